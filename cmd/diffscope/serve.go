package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/diffscope/internal/mcp"
	"github.com/dshills/diffscope/internal/storage"
)

func newServeCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.dbPath, "db", "", "run store location")
	flags.StringVar(&opts.analyzerCmd, "analyzer-cmd", "", "external analyzer command (default semcode)")
	return cmd
}

func runServe(opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	// stdout is the protocol channel; startup chatter goes to stderr.
	log.Printf("diffscope MCP server v%s starting (driver: %s, mode: %s)",
		version, storage.DriverName, storage.BuildMode)

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}
