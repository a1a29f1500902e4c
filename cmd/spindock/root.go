/*
 * root.go, part of spindock.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//Version is set at build time.
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	timeout    time.Duration
}

//app carries the loaded configuration and logger to the subcommands.
type app struct {
	cfg *Config
	log *zap.Logger
}

type appKey struct{}

func fromCommand(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

//newRootCmd returns the spindock command with all its subcommands.
func newRootCmd() *cobra.Command {
	opts := new(rootOptions)
	var cancel context.CancelFunc
	cmd := &cobra.Command{
		Use:   "spindock",
		Short: "Rigid protein-protein docking with surface spin images",
		Long: "spindock matches the spin images of two molecular surfaces, joins\n" +
			"geometrically compatible point pairs into cliques and ranks the implied\n" +
			"rigid placements of the ligand by how much it penetrates the receptor.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			log, err := cfg.Logger()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if opts.timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &app{cfg: cfg, log: log}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cancel != nil {
				cancel()
			}
			_ = fromCommand(cmd).log.Sync()
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the configuration")
	pf.DurationVar(&opts.timeout, "timeout", 0, "abort after this long, 0 means never")
	cmd.AddCommand(newDockCmd(), newRescoreCmd(), newConfigCmd())
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := fromCommand(cmd).cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
