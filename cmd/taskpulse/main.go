// @title			taskpulse API
// @version		1.0
// @description	Conversational task accountability over WhatsApp.
// @BasePath		/api
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"log/slog"
	"os"

	"github.com/mtlprog/taskpulse/internal/config"
	"github.com/mtlprog/taskpulse/internal/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskpulse",
		Usage: "Conversational task accountability over WhatsApp",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "db-max-conns",
				Usage:   "Maximum pool connections (0 keeps the default)",
				EnvVars: []string{"DB_MAX_CONNS"},
			},
			&cli.StringFlag{
				Name:    "ai-api-key",
				Usage:   "API key for the chat completions service; empty uses deterministic rules",
				EnvVars: []string{"DEEPSEEK_API_KEY", "AI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "ai-base-url",
				Value:   config.DefaultAIBaseURL,
				Usage:   "OpenAI-compatible base URL",
				EnvVars: []string{"AI_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "ai-model",
				Value:   config.DefaultAIModel,
				Usage:   "Chat model",
				EnvVars: []string{"AI_MODEL"},
			},
			&cli.DurationFlag{
				Name:    "ai-timeout",
				Value:   config.DefaultAITimeout,
				Usage:   "Timeout of a single chat completion",
				EnvVars: []string{"AI_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "whatsapp-api-token",
				Usage:   "WhatsApp Cloud API access token",
				EnvVars: []string{"WHATSAPP_API_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "whatsapp-phone-number-id",
				Usage:   "WhatsApp business phone number id",
				EnvVars: []string{"WHATSAPP_PHONE_NUMBER_ID"},
			},
			&cli.BoolFlag{
				Name:    "mock-messaging",
				Usage:   "Log outbound messages instead of sending them",
				EnvVars: []string{"MOCK_MESSAGING"},
			},
			&cli.DurationFlag{
				Name:    "whatsapp-timeout",
				Value:   config.DefaultWhatsAppTimeout,
				Usage:   "Timeout of a single Graph API request",
				EnvVars: []string{"WHATSAPP_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "ambiguity-policy",
				Value:   config.DefaultAmbiguityPolicy,
				Usage:   "What to do when a message does not name a task: first or clarify",
				EnvVars: []string{"AMBIGUITY_POLICY"},
			},
			&cli.IntFlag{
				Name:    "history-limit",
				Value:   config.DefaultHistoryLimit,
				Usage:   "Recent messages used as reply context",
				EnvVars: []string{"HISTORY_LIMIT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:    "admin-token",
						Usage:   "Bearer token for the admin API; empty disables authentication",
						EnvVars: []string{"ADMIN_TOKEN"},
					},
					&cli.StringFlag{
						Name:    "whatsapp-verify-token",
						Usage:   "Token expected in webhook verification requests",
						EnvVars: []string{"WHATSAPP_VERIFY_TOKEN"},
					},
					&cli.StringFlag{
						Name:    "whatsapp-app-secret",
						Usage:   "App secret used to verify webhook signatures",
						EnvVars: []string{"WHATSAPP_APP_SECRET"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "evaluate-risk",
				Usage:  "Move tasks close to or past their deadline to at_risk",
				Action: runEvaluateRisk,
			},
			{
				Name:      "simulate",
				Usage:     "Print the action plan for a message without applying it",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Sender user id",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:   "at",
						Usage:  "Evaluate scheduling at this instant (RFC 3339)",
						Layout: "2006-01-02T15:04:05Z07:00",
					},
				},
				Before: func(c *cli.Context) error {
					// stdout carries the plan
					logger.SetupWriter(os.Stderr, logger.ParseLevel(c.String("log-level")))
					return nil
				},
				Action: runSimulate,
			},
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "Apply all pending migrations", Action: runMigrateUp},
					{Name: "down", Usage: "Roll back the latest migration", Action: runMigrateDown},
					{Name: "status", Usage: "Print the current schema version", Action: runMigrateStatus},
				},
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadConfig assembles the runtime configuration from flags and environment.
func loadConfig(c *cli.Context) config.Config {
	return config.Config{
		DatabaseURL:     c.String("database-url"),
		Port:            c.String("port"),
		AdminToken:      c.String("admin-token"),
		AmbiguityPolicy: c.String("ambiguity-policy"),
		HistoryLimit:    c.Int("history-limit"),
		AI: config.AI{
			APIKey:  c.String("ai-api-key"),
			BaseURL: c.String("ai-base-url"),
			Model:   c.String("ai-model"),
			Timeout: c.Duration("ai-timeout"),
		},
		WhatsApp: config.WhatsApp{
			APIToken:      c.String("whatsapp-api-token"),
			PhoneNumberID: c.String("whatsapp-phone-number-id"),
			VerifyToken:   c.String("whatsapp-verify-token"),
			AppSecret:     c.String("whatsapp-app-secret"),
			Mock:          c.Bool("mock-messaging"),
			Timeout:       c.Duration("whatsapp-timeout"),
		},
	}
}
