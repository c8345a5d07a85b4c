package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mtlprog/taskpulse/internal/app"
	"github.com/mtlprog/taskpulse/internal/config"
	"github.com/mtlprog/taskpulse/internal/database"
	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/engine"
	"github.com/mtlprog/taskpulse/internal/handler"
	"github.com/urfave/cli/v2"
)

// connect opens the pool and brings the schema up to date.
func connect(c *cli.Context, migrate bool) (*database.DB, error) {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"), database.PoolOptions{
		MaxConns: int32(c.Int("db-max-conns")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrate {
		if err := database.RunMigrations(ctx, db.Pool()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	cfg := loadConfig(c)
	if cfg.Port == "" {
		cfg.Port = config.DefaultPort
	}

	db, err := connect(c, true)
	if err != nil {
		return err
	}
	defer db.Close()

	h := handler.New(app.New(db.Pool(), cfg), handler.Options{
		VerifyToken: cfg.WhatsApp.VerifyToken,
		AppSecret:   cfg.WhatsApp.AppSecret,
		AdminToken:  cfg.AdminToken,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second, // webhook handling waits on the AI service
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runEvaluateRisk(c *cli.Context) error {
	ctx := c.Context

	db, err := connect(c, true)
	if err != nil {
		return err
	}
	defer db.Close()

	a := app.New(db.Pool(), loadConfig(c))

	result, err := a.RiskService.ProcessAtRiskTasks(ctx, time.Now())
	if result != nil {
		for _, u := range result.Updates {
			slog.Info("task marked at risk",
				"task_id", u.TaskID,
				"previous_status", u.PreviousStatus,
				"reason", u.Reason,
			)
		}
		slog.Info("risk evaluation finished", "processed", result.Processed, "updates", len(result.Updates))
	}
	return err
}

func runSimulate(c *cli.Context) error {
	ctx := c.Context

	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyMessage
	}

	db, err := connect(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	a := app.New(db.Pool(), loadConfig(c))

	plan, err := a.Engine.CreatePlan(ctx, c.String("user"), text, engine.PlanOptions{
		Now: c.Timestamp("at"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func runMigrateUp(c *cli.Context) error {
	db, err := connect(c, true)
	if err != nil {
		return err
	}
	db.Close()
	return nil
}

func runMigrateDown(c *cli.Context) error {
	db, err := connect(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	return database.RollbackMigration(c.Context, db.Pool())
}

func runMigrateStatus(c *cli.Context) error {
	db, err := connect(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := database.MigrationVersion(c.Context, db.Pool())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "schema version: %d\n", version)
	return nil
}
