package main

import (
	"github.com/Eli-Gooding/ChatGenius-App/cmd"
)

func main() {
	cmd.Execute()
}
