package cmd

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recruiterhub/wabot/botengine"
	coreconfig "github.com/recruiterhub/wabot/core/config"
	coredatabase "github.com/recruiterhub/wabot/core/database"
	"github.com/recruiterhub/wabot/domains/contact"
	"github.com/recruiterhub/wabot/domains/message"
	"github.com/recruiterhub/wabot/domains/schedule"
	"github.com/recruiterhub/wabot/domains/settings"
	"github.com/recruiterhub/wabot/repository"
	"github.com/recruiterhub/wabot/usecase"
)

var (
	cfg *coreconfig.Config

	// Repositories
	contactRepo  contact.IContactRepository
	messageRepo  message.IMessageRepository
	settingsRepo settings.ISettingsRepository
	scheduleRepo schedule.IScheduleRepository

	// Bot engine
	engine    *botengine.Client
	humanizer *botengine.Humanizer
)

var (
	flagPort  string
	flagDebug bool
	flagOS    string
)

var rootCmd = &cobra.Command{
	Use:   "wabot",
	Short: "WhatsApp recruiting auto-reply bot",
	Long: `Auto-reply bot for recruiting chats: receives WhatsApp messages over a
socket session or a REST gateway, answers them with a language model and
keeps per-contact conversation state.`,
}

func init() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagOS,
		"os", "",
		"",
		`os name reported to WhatsApp --os <string> | example: --os="Chrome"`,
	)
}

// initEnvConfig loads configuration from environment variables and
// applies flag overrides.
func initEnvConfig() {
	loaded, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	cfg = loaded

	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if flagOS != "" {
		cfg.Whatsapp.OS = flagOS
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// initApp opens the database and builds the repositories and the bot
// engine shared by every subcommand.
func initApp() {
	db, err := coredatabase.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	if err := repository.InitSchema(context.Background(), db); err != nil {
		logrus.Fatalf("Schema migration error: %v", err)
	}

	contactRepo = repository.NewContactGormRepository(db)
	messageRepo = repository.NewMessageGormRepository(db)
	settingsRepo = repository.NewSettingsGormRepository(db)
	scheduleRepo = repository.NewScheduleGormRepository(db)

	engine = botengine.NewClient(buildProvider(), cfg.AI.ModelOverride)
	humanizer = botengine.NewHumanizer(cfg.Whatsapp.TypingEnabled)
}

// applyFollowupConfig overrides the scheduler timing defaults from env.
func applyFollowupConfig(s *usecase.FollowupScheduler) {
	if cfg.Followup.PollInterval > 0 {
		s.PollInterval = time.Duration(cfg.Followup.PollInterval) * time.Second
	}
	if cfg.Followup.BatchLimit > 0 {
		s.BatchLimit = cfg.Followup.BatchLimit
	}
	if cfg.Followup.SendPauseMs > 0 {
		s.SendPause = time.Duration(cfg.Followup.SendPauseMs) * time.Millisecond
	}
}

func buildProvider() botengine.Provider {
	if cfg.AI.Provider == "openai" {
		return botengine.NewOpenAIProvider(cfg.AI.OpenAIAPIKey)
	}
	return botengine.NewGeminiProvider(cfg.AI.GeminiAPIKey)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}
