/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/suparena/schemastore"
	"github.com/suparena/schemastore/access"
	"github.com/suparena/schemastore/config"
	"github.com/suparena/schemastore/logging"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	verbosity  int
	cfg        *config.Config
}

// NewRootCmd builds the schemactl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "schemactl",
		Short: "Assemble and register data access schemas",
		Long: `schemactl assembles mapper definitions from schema templates and registers
access types against the configured stores.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			verbosity := a.verbosity
			if !cmd.Flags().Changed("verbose") {
				verbosity = cfg.Logging.Verbosity
			}
			opts := cfg.LoggingOptions()
			opts.Out = cmd.ErrOrStderr()
			logging.Setup(verbosity, opts)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("SCHEMASTORE_CONFIG"), "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newRegisterCmd(a))
	rootCmd.AddCommand(newBackupCmd(a))
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			info := schemastore.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schemactl version %s\n", info.Version)
			fmt.Fprintf(out, "  commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  built:  %s\n", info.BuildDate)
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
		},
	}
}

// manifest reads the descriptors declared in the configured manifest.
func (a *app) manifest() ([]*access.Descriptor, error) {
	if a.cfg.Manifest == "" {
		return nil, fmt.Errorf("no manifest configured")
	}
	f, err := os.Open(a.cfg.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return access.ReadManifest(f)
}

// pick returns the manifest descriptors named by names, or all of them.
func pick(descriptors []*access.Descriptor, names []string) ([]*access.Descriptor, error) {
	if len(names) == 0 {
		return descriptors, nil
	}
	byName := make(map[string]*access.Descriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name()] = d
	}
	picked := make([]*access.Descriptor, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("descriptor %s is not declared in the manifest", name)
		}
		picked = append(picked, d)
	}
	return picked, nil
}
