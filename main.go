// backend/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const usage = `usage: portfolio [command]

commands:
  serve          run the API server (default)
  create-admin   create the admin account from ADMIN_EMAIL / ADMIN_PASSWORD
  seed [-file f] reset projects, skills, stats and experiences from a YAML file
`

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := newLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	cmd, args := "serve", []string{}
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, log)
	case "create-admin":
		err = createAdmin(ctx, cfg, log)
	case "seed":
		err = seed(ctx, cfg, log, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", "err", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	var mailer Mailer = logMailer{log: log}
	if cfg.MailAPIKey != "" {
		mailer = newHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	} else {
		log.Warn("MAIL_API_KEY is not set, contact notifications will only be logged")
	}

	srv := NewServer(cfg, store, mailer, log)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "db", cfg.DBDriver, "env", cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	srv.notify.Wait()
	return nil
}

func createAdmin(ctx context.Context, cfg Config, log *slog.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	auth := &AuthService{accounts: store.Accounts}
	acc, created, err := auth.EnsureAccount(ctx, cfg.AdminEmail, cfg.AdminPassword, RoleAdmin)
	if err != nil {
		return err
	}
	if !created {
		log.Info("admin user already exists", "email", acc.Email)
		return nil
	}
	log.Info("admin user created", "email", acc.Email, "id", acc.ID)
	return nil
}

func seed(ctx context.Context, cfg Config, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", cfg.SeedFile, "YAML seed file (defaults to the embedded data)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data := defaultSeed
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		data = b
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	rep, err := seedPortfolio(ctx, store, data, cfg.AdminEmail, cfg.AdminPassword, log)
	if err != nil {
		return err
	}
	log.Info("seeding completed",
		"projects", rep.Projects, "skills", rep.Skills, "stats", rep.Stats, "experiences", rep.Experiences)
	return nil
}

func closeStore(store *Store, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Warn("close store", "err", err)
	}
}
