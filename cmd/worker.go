package cmd

import (
	"context"

	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant/worker"
	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

var workerCMD = &cobra.Command{
	Use:   "worker",
	Short: "worker",
	Long:  `consume queued message ingestion tasks`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runWorker(cmd.Context())
	},
}

func init() {
	rootCMD.AddCommand(workerCMD)
}

func runWorker(ctx context.Context) {
	deps, err := buildDependencies(ctx)
	if err != nil {
		log.Logger.Panic("build dependencies", zap.Error(err))
	}
	if deps.queue == nil {
		log.Logger.Panic("worker requires settings.db.redis.addr")
	}

	w, err := worker.NewIngestWorker(deps.queue, deps.chat, deps.svc, log.Logger.Named("ingest_worker"))
	if err != nil {
		log.Logger.Panic("create ingest worker", zap.Error(err))
	}

	log.Logger.Info("ingest worker started")
	if err := w.Start(ctx); err != nil {
		log.Logger.Panic("ingest worker stopped", zap.Error(err))
	}
}
