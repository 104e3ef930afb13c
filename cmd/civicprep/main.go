// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/blinklabs-io/civicprep"
	"github.com/blinklabs-io/civicprep/internal/config"
	"github.com/blinklabs-io/civicprep/internal/node"
	"github.com/blinklabs-io/civicprep/internal/version"
)

const (
	programName = "civicprep"
)

func slogPrintf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var errNoConfig = errors.New("no config found in context")

var (
	globalFlags = struct {
		debug          bool
		json           bool
		dataDir        string
		metadataPlugin string
	}{}
	configFile string
)

func commonRun() *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	// Command output owns stdout
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

// openNode opens the stores and API clients for a single command
func openNode(cmd *cobra.Command) (*civicprep.Node, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errNoConfig
	}
	logger := commonRun()
	n, err := node.New(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	if err := n.Open(cmd.Context()); err != nil {
		_ = n.Stop()
		return nil, err
	}
	return n, nil
}

// withNode runs fn against an open node and stops it afterwards
func withNode(
	fn func(ctx context.Context, cmd *cobra.Command, args []string, n *civicprep.Node) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		n, err := openNode(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if stopErr := n.Stop(); stopErr != nil && err == nil {
				err = stopErr
			}
		}()
		return fn(cmd.Context(), cmd, args, n)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Elections, voter information and representatives from the civic information API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		BoolVar(&globalFlags.json, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.dataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().
		StringVarP(&globalFlags.metadataPlugin, "metadata", "m", "", "election store backend: sqlite or postgres (overrides config)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Override config with command line flags
		if globalFlags.dataDir != "" {
			cfg.DataDir = globalFlags.dataDir
		}
		if globalFlags.metadataPlugin != "" {
			cfg.MetadataPlugin = globalFlags.metadataPlugin
		}
		if globalFlags.debug {
			cfg.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(electionsCommand())
	rootCmd.AddCommand(voterInfoCommand())
	rootCmd.AddCommand(representativesCommand())
	rootCmd.AddCommand(addressCommand())
	rootCmd.AddCommand(syncCommand())
	rootCmd.AddCommand(versionCommand())

	// Execute cobra command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
