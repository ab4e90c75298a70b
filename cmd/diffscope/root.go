package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/internal/storage"
)

// rootOptions are the flags shared by the segmentation commands.
type rootOptions struct {
	configPath  string
	gitDir      string
	outputDir   string
	dbPath      string
	analyzerCmd string
	noAnalyzer  bool
	quiet       bool
}

// loadConfig resolves the effective configuration: defaults, then the
// config file when given, then explicit flags.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if o.analyzerCmd != "" {
		cfg.Analyzer = o.analyzerCmd
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "diffscope",
		Short:         "Decompose commit diffs into reviewable change groups",
		Long:          "diffscope splits a commit's diff into per-symbol changes, merges related fragments under size caps, and emits numbered review groups as JSON artifacts.",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newSegmentCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func versionString() string {
	return fmt.Sprintf("%s (built %s, %s sqlite driver)", version, buildTime, storage.BuildMode)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("diffscope %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("Build Mode: %s\n", storage.BuildMode)
			fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		},
	}
}
