package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recruiterhub/wabot/channel"
	"github.com/recruiterhub/wabot/infrastructure/whatsapp"
	"github.com/recruiterhub/wabot/pkg/msgworker"
	"github.com/recruiterhub/wabot/usecase"
)

var socketCmd = &cobra.Command{
	Use:   "socket",
	Short: "Run the bot over a direct WhatsApp socket session",
	Run:   socketWorker,
}

func init() {
	rootCmd.AddCommand(socketCmd)
}

func socketWorker(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := whatsapp.NewAdapter(cfg.Whatsapp.SessionName, cfg.Paths.Storages, cfg.Whatsapp.OS)

	pipeline := usecase.NewPipelineService(contactRepo, messageRepo, settingsRepo, scheduleRepo, engine, adapter, humanizer)
	scheduler := usecase.NewFollowupScheduler(scheduleRepo, contactRepo, adapter)
	applyFollowupConfig(scheduler)

	// One slow model call must not block the whatsmeow event goroutine,
	// so inbound events go through the worker pool.
	pool := msgworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start(ctx)

	adapter.OnMessage(func(_ context.Context, msg channel.IncomingMessage) {
		pool.Dispatch(msgworker.Job{
			ChatID: msg.ChatID,
			Handler: func(jobCtx context.Context) error {
				_, err := pipeline.HandleIncoming(jobCtx, msg)
				return err
			},
		})
	})

	if err := adapter.Connect(ctx); err != nil {
		logrus.Fatalf("[SOCKET] Connection failed: %v", err)
	}

	go scheduler.StartLoop(ctx)

	logrus.Info("[SOCKET] Bot is running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logrus.Info("[SOCKET] Shutting down...")
	cancel()
	pool.Stop()
	adapter.Disconnect()
}
