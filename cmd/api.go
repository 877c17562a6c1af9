package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Eli-Gooding/ChatGenius-App/internal/web"
	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `run the assistant HTTP API`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runAPI(cmd.Context())
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}

func runAPI(ctx context.Context) {
	deps, err := buildDependencies(ctx)
	if err != nil {
		log.Logger.Panic("build dependencies", zap.Error(err))
	}

	// IngestQueue is an interface; pass a typed nil only when unconfigured
	ctrl := web.NewController(deps.svc, deps.chat, ingestQueue(deps), log.Logger.Named("web"))

	addr := gconfig.Shared.GetString("listen")
	log.Logger.Info("listening", zap.String("addr", addr))
	web.RunServer(addr, ctrl)
}

func ingestQueue(deps *dependencies) web.IngestQueue {
	if deps.queue == nil {
		return nil
	}
	return deps.queue
}
