/*
 * dock.go, part of spindock.
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
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/dockplot"
	"github.com/rmera/spindock/engine"
	"github.com/rmera/spindock/potential"
	"github.com/rmera/spindock/surfio"
)

type dockOptions struct {
	variant      string
	recStructure string
	ligStructure string
	contrib      string
	out          string
	metrics      string
	plot         string
	pairsPlot    string
	ply          string
}

//molecule is a surface with, optionally, the structure it was built from.
type molecule struct {
	surface   *dock.Surface
	structure *surfio.Structure
}

//loadMolecule reads the surface in objFile and, if given, the structure in
//structFile. If the structure is given, the surface gets its electrostatic
//attribute and, with a contribution table, its lipophilic one.
func loadMolecule(ctx context.Context, objFile, structFile string, contrib map[string]float64, workers int, log *zap.Logger) (*molecule, error) {
	S, err := surfio.ReadOBJFile(objFile, "")
	if err != nil {
		return nil, err
	}
	if ce := log.Check(zap.DebugLevel, "surface read"); ce != nil {
		ce.Write(zap.String("surface", S.Name()), zap.Int("points", S.Len()), zap.Int("faces", len(S.Faces())),
			zap.Float64("diameter", S.Diameter()), zap.Float64("average_edge", S.AverageEdgeLength()))
	}
	M := &molecule{surface: S}
	if structFile == "" {
		return M, nil
	}
	M.structure, err = surfio.ReadStructureFile(structFile)
	if err != nil {
		return nil, err
	}
	M.surface, err = potential.Annotate(ctx, S, M.structure.Atoms, contrib, workers)
	if err != nil {
		return nil, err
	}
	for _, a := range M.surface.AttributeNames() {
		v, _ := M.surface.Attribute(a)
		min, max, mean := potential.Summary(v)
		log.Debug("surface attribute", zap.String("surface", S.Name()), zap.String("attribute", a),
			zap.Float64("min", min), zap.Float64("max", max), zap.Float64("mean", mean))
	}
	log.Info("molecule read", zap.String("surface", S.Name()), zap.Int("points", S.Len()),
		zap.Int("atoms", len(M.structure.Atoms)), zap.Strings("attributes", M.surface.AttributeNames()))
	return M, nil
}

func newDockCmd() *cobra.Command {
	opts := new(dockOptions)
	cmd := &cobra.Command{
		Use:   "dock RECEPTOR.obj LIGAND.obj",
		Short: "Dock the ligand surface on the receptor surface",
		Long: "Dock reads two OBJ surfaces, finds the rigid placements of the ligand on\n" +
			"the receptor and writes them, ranked, as JSON. The electrostatic variant\n" +
			"needs PQR structures for both molecules, the lipophilic variant needs\n" +
			"PDB or PQR structures and a table of fragmental contributions. With a\n" +
			"ligand structure, the best placements are also written as PDB files.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDock(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.variant, "variant", "geometry", "geometry, electrostatic, lipophilic or combined")
	f.StringVar(&opts.recStructure, "rec-structure", "", "PDB or PQR file of the receptor")
	f.StringVar(&opts.ligStructure, "lig-structure", "", "PDB or PQR file of the ligand")
	f.StringVar(&opts.contrib, "contrib", "", "table of atomic fragmental contributions to lipophilicity")
	f.StringVarP(&opts.out, "out", "o", "poses.json", "pose report, compressed if it ends in .gz or .zst")
	f.StringVar(&opts.metrics, "metrics", "", "write Prometheus metrics of the run to this file")
	f.StringVar(&opts.plot, "plot", "", "plot the score distribution to this file (png, svg, pdf)")
	f.StringVar(&opts.pairsPlot, "pairs-plot", "", "plot the correlation of the selected pairs to this file")
	f.StringVar(&opts.ply, "ply", "", "write both surfaces as PLY, with the points of the best clique highlighted, using this prefix")
	return cmd
}

func runDock(cmd *cobra.Command, args []string, opts *dockOptions) error {
	A := fromCommand(cmd)
	ctx := cmd.Context()
	O := A.cfg.Docking
	v, err := engine.ParseVariant(opts.variant)
	if err != nil {
		return err
	}
	var contrib map[string]float64
	if opts.contrib != "" {
		if contrib, err = surfio.ReadContributionsFile(opts.contrib); err != nil {
			return err
		}
	}
	rec, err := loadMolecule(ctx, args[0], opts.recStructure, contrib, O.NumWorkers(), A.log)
	if err != nil {
		return err
	}
	lig, err := loadMolecule(ctx, args[1], opts.ligStructure, contrib, O.NumWorkers(), A.log)
	if err != nil {
		return err
	}
	var reg *prometheus.Registry
	eopts := []engine.Option{engine.WithLogger(A.log)}
	if opts.metrics != "" {
		reg = prometheus.NewRegistry()
		m, err := engine.NewMetrics(reg)
		if err != nil {
			return err
		}
		eopts = append(eopts, engine.WithMetrics(m))
	}
	E, err := engine.New(O, eopts...)
	if err != nil {
		return err
	}
	res, err := E.Dock(ctx, rec.surface, lig.surface, v)
	if err != nil {
		return err
	}
	if err := writeReport(opts.out, res); err != nil {
		return err
	}
	if lig.structure != nil {
		if err := writeStructures(A.cfg.Output, lig, res); err != nil {
			return err
		}
	}
	if opts.ply != "" && len(res.Poses) > 0 {
		if err := writePLY(opts.ply, rec.surface, lig.surface, res.Poses[0].Clique); err != nil {
			return err
		}
	}
	if opts.plot != "" && len(res.Poses) > 0 {
		p, err := dockplot.ScoreHistogram(res, A.cfg.Output.PlotBins)
		if err != nil {
			return err
		}
		if err := dockplot.Save(p, opts.plot); err != nil {
			return err
		}
	}
	if opts.pairsPlot != "" {
		pairs, err := E.Pairs(ctx, rec.surface, lig.surface, v)
		if err != nil {
			return err
		}
		p, err := dockplot.CorrelationHistogram(pairs, A.cfg.Output.PlotBins)
		if err != nil {
			return err
		}
		if err := dockplot.Save(p, opts.pairsPlot); err != nil {
			return err
		}
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(opts.metrics, reg); err != nil {
			return err
		}
	}
	return printPoses(cmd, res.Poses, A.cfg.Output.Structures)
}

func writeReport(fname string, res *engine.Result) error {
	w, err := surfio.Create(fname)
	if err != nil {
		return err
	}
	if err := surfio.WritePoses(w, res, 0); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

//writeStructures writes the ligand moved by each of the best poses.
func writeStructures(o OutputConfig, lig *molecule, res *engine.Result) error {
	for i, p := range res.Poses {
		if i >= o.Structures {
			break
		}
		name := filepath.Join(o.Dir, fmt.Sprintf("%s_%03d.pdb", stem(lig.surface.Name()), i+1))
		w, err := surfio.Create(name)
		if err != nil {
			return err
		}
		if err := surfio.WritePDB(w, lig.structure, p.Transform); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writePLY(prefix string, rec, lig *dock.Surface, best dock.Clique) error {
	r, l := best.Indexes()
	for _, s := range []struct {
		S  *dock.Surface
		hl []int
		n  string
	}{{rec, r, "_rec.ply"}, {lig, l, "_lig.ply"}} {
		w, err := surfio.Create(prefix + s.n)
		if err != nil {
			return err
		}
		if err := surfio.WritePLY(w, s.S, s.hl); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

//stem returns the base name of fname without its extensions.
func stem(fname string) string {
	b := filepath.Base(fname)
	if i := strings.Index(b, "."); i > 0 {
		return b[:i]
	}
	return b
}

func printPoses(cmd *cobra.Command, poses []engine.ScoredPose, n int) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "rank\tscore\tclique\ttranslation")
	for i, p := range poses {
		if i >= n {
			break
		}
		t := p.Transform.Translation()
		fmt.Fprintf(w, "%d\t%.2f\t%d\t%.3f %.3f %.3f\n", i+1, p.Score, len(p.Clique), t.X, t.Y, t.Z)
	}
	return w.Flush()
}
