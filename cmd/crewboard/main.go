// Package main is the entry point for the crewboard CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/cli"
	"github.com/runoshun/crewboard/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return report(ctx, nil, fmt.Errorf("failed to get current directory: %w", err))
	}

	// Create dependency injection container
	container, err := app.New(cwd)
	if err != nil {
		// Allow running without git repo for help/version
		if errors.Is(err, domain.ErrNotGitRepository) {
			return report(ctx, nil, runWithoutContainer(ctx, err))
		}
		return report(ctx, nil, fmt.Errorf("failed to initialize: %w", err))
	}

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	err = rootCmd.ExecuteContext(ctx)
	// Close drains pending hand-backs before the store goes away.
	if closeErr := container.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return report(ctx, container, err)
}

// report prints err to stderr and returns it.
func report(ctx context.Context, c *app.Container, err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+cli.FormatError(ctx, c, err))
	}
	return err
}

// runWithoutContainer handles cases where git repo is not found.
// This allows help and version to work without a git repository.
func runWithoutContainer(ctx context.Context, gitErr error) error {
	rootCmd := cli.NewRootCommand(nil, version)

	// Commands that can run without a git repository
	if canRunWithoutGit(os.Args[1:]) {
		return rootCmd.ExecuteContext(ctx)
	}
	// For other commands, return the git error
	return gitErr
}

func canRunWithoutGit(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion":
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
