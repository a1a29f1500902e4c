/*
 * rescore.go, part of spindock.
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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmera/spindock/engine"
	"github.com/rmera/spindock/surfio"
)

func newRescoreCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "rescore RECEPTOR.obj LIGAND.obj POSES.json",
		Short: "Score the poses of a report again, with the current configuration",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			A := fromCommand(cmd)
			rec, err := surfio.ReadOBJFile(args[0], "")
			if err != nil {
				return err
			}
			lig, err := surfio.ReadOBJFile(args[1], "")
			if err != nil {
				return err
			}
			T, err := surfio.ReadPosesFile(args[2])
			if err != nil {
				return err
			}
			E, err := engine.New(A.cfg.Docking, engine.WithLogger(A.log))
			if err != nil {
				return err
			}
			P, err := E.Rescore(cmd.Context(), rec, lig, T)
			if err != nil {
				return err
			}
			A.log.Info("poses rescored", zap.Int("read", len(T)), zap.Int("kept", len(P)))
			n := A.cfg.Output.Structures
			if all {
				n = len(P)
			}
			return printPoses(cmd, P, n)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every pose, not only as many as output.structures")
	return cmd
}
