package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/myshop/myshop-manager/app"
	"github.com/myshop/myshop-manager/config"
	"github.com/myshop/myshop-manager/internal/auth/pwhash"
	"github.com/myshop/myshop-manager/log"
	"github.com/spf13/cobra"
)

// loadEnv reads envFile into the environment. A missing file is not an error.
func loadEnv() error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load %s: %w", envFile, err)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	if err := loadEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load a config %v", err.Error())
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.New(&cfg.Logger)
	slog.SetDefault(logger)

	a := app.New(cfg, nil)
	if err := a.Start(ctx); err != nil {
		a.Stop(ctx)
		return fmt.Errorf("cannot start the application %v", err.Error())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	select {
	case s := <-sigCh:
		logger.With("signal", s.String()).Warn("signal received, exiting")
		a.Stop(ctx)
		logger.Info("application exited")
	case <-a.Done():
		a.Stop(ctx)
		logger.Error("application exited")
	}

	return nil
}

func hashPassword(cmd *cobra.Command, args []string) error {
	if err := loadEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load a config %v", err.Error())
	}
	ph, err := pwhash.New(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	hash, err := ph.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
