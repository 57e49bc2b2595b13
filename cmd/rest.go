package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recruiterhub/wabot/infrastructure/greenapi"
	"github.com/recruiterhub/wabot/ui/rest"
	"github.com/recruiterhub/wabot/ui/rest/middleware"
	"github.com/recruiterhub/wabot/usecase"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the bot in gateway mode behind a REST webhook",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	if !cfg.GatewayConfigured() {
		logrus.Fatalln("Gateway mode requires GREEN_API_BASE_URL, GREEN_API_ID_INSTANCE and GREEN_API_TOKEN.")
	}
	if !cfg.AdminConfigured() {
		logrus.Fatalln("ADMIN_USER and ADMIN_PASS are required. Nothing should be public; set both and restart.")
	}

	gateway, err := greenapi.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.InstanceID, cfg.Gateway.APITokenInstance)
	if err != nil {
		logrus.Fatalf("Gateway client error: %v", err)
	}

	pipeline := usecase.NewPipelineService(contactRepo, messageRepo, settingsRepo, scheduleRepo, engine, gateway, humanizer)
	scheduler := usecase.NewFollowupScheduler(scheduleRepo, contactRepo, gateway)
	applyFollowupConfig(scheduler)
	settingsService := usecase.NewSettingsService(settingsRepo)

	fiberConfig := fiber.Config{
		Network:               "tcp",
		AppName:               "RecruiterHub Bot",
		DisableStartupMessage: false,
		ServerHeader:          "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.EnableTrustedProxyCheck = true
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Webhook-Secret, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	base := app.Group(cfg.App.BasePath)
	adminAuth := middleware.AdminAuth(cfg.Admin.User, cfg.Admin.Password)

	rest.InitRestWebhook(base, pipeline, cfg.Gateway.WebhookSecret)
	rest.InitRestAuth(base, cfg.Admin.User, cfg.Admin.Password)
	rest.InitRestAdmin(base, adminAuth, settingsService, messageRepo)
	rest.InitRestScheduler(base, scheduler)
	rest.InitRestHealth(base, cfg.App.Version)

	rest.InitRestCatchAll(base)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalf("[REST] Server stopped: %v", err)
	}
}
