// Package app assembles repositories, services and the decision engine from a
// configuration. The HTTP server and the CLI commands share one App.
package app

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/ai"
	"github.com/mtlprog/taskpulse/internal/config"
	"github.com/mtlprog/taskpulse/internal/engine"
	"github.com/mtlprog/taskpulse/internal/messaging"
	"github.com/mtlprog/taskpulse/internal/repository"
	"github.com/mtlprog/taskpulse/internal/service"
)

// App holds every long-lived component.
type App struct {
	Pool *pgxpool.Pool

	Tasks    *repository.TaskRepository
	Users    *repository.UserRepository
	Settings *repository.SettingsRepository
	Audit    *repository.AuditRepository
	Messages *repository.MessageRepository

	Dispatcher messaging.Dispatcher
	Engine     *engine.Engine

	TaskService     *service.TaskService
	RiskService     *service.RiskService
	SettingsService *service.SettingsService
}

// Option overrides a component, mostly for tests.
type Option func(*options)

type options struct {
	dispatcher messaging.Dispatcher
	chat       ai.ChatCompleter
	now        func() time.Time
}

// WithDispatcher replaces the WhatsApp dispatcher.
func WithDispatcher(d messaging.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithChat replaces the chat completions client.
func WithChat(c ai.ChatCompleter) Option {
	return func(o *options) { o.chat = c }
}

// WithClock replaces the wall clock used by the engine.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New wires all components on top of pool.
func New(pool *pgxpool.Pool, cfg config.Config, opts ...Option) *App {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if o.chat == nil && cfg.RemoteAIEnabled() {
		o.chat = ai.NewOpenAIChat(ai.ChatConfig{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
	}
	if o.chat == nil {
		slog.Warn("no AI API key configured, using deterministic classifier and replies")
	}

	if o.dispatcher == nil {
		o.dispatcher = messaging.NewWhatsAppDispatcher(messaging.Config{
			APIToken:      cfg.WhatsApp.APIToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			Mock:          cfg.WhatsApp.Mock,
			Timeout:       cfg.WhatsApp.Timeout,
		})
	}

	a := &App{
		Pool:       pool,
		Tasks:      repository.NewTaskRepository(pool),
		Users:      repository.NewUserRepository(pool),
		Settings:   repository.NewSettingsRepository(pool),
		Audit:      repository.NewAuditRepository(pool),
		Messages:   repository.NewMessageRepository(pool),
		Dispatcher: o.dispatcher,
	}

	executor := engine.NewExecutor(a.Users, a.Tasks, a.Settings, a.Audit, a.Messages, a.Dispatcher, o.now)

	a.Engine = engine.New(engine.Deps{
		Users:      a.Users,
		Tasks:      a.Tasks,
		Settings:   a.Settings,
		Messages:   a.Messages,
		Classifier: ai.NewClassifier(o.chat),
		Generator:  ai.NewGenerator(o.chat),
		Executor:   executor,
	}, engine.Options{
		Policy:       engine.ParseAmbiguityPolicy(cfg.AmbiguityPolicy),
		HistoryLimit: cfg.HistoryLimit,
		Now:          o.now,
	})

	a.TaskService = service.NewTaskService(pool, a.Tasks, a.Users, a.Settings, a.Audit, a.Messages, a.Dispatcher)
	a.RiskService = service.NewRiskService(pool, a.Tasks, a.Audit)
	a.SettingsService = service.NewSettingsService(a.Users, a.Settings)

	return a
}
