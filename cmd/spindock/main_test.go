/*
 * main_test.go, part of spindock.
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
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/align"
	"github.com/rmera/spindock/internal/testsurf"
	"github.com/rmera/spindock/surfio"
)

func writeFile(Te *testing.T, name, content string) string {
	require.NoError(Te, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func run(Te *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadConfig(Te *testing.T) {
	C, err := LoadConfig("")
	require.NoError(Te, err)
	assert.Equal(Te, dock.DefaultOptions().TopK, C.Docking.TopK)
	assert.Equal(Te, []float64{-5, -3.5, -2, -1, 1}, C.Docking.PenetrationThresholds)
	assert.Equal(Te, "info", C.Log.Level)
	assert.Equal(Te, 10, C.Output.Structures)

	dir := Te.TempDir()
	f := writeFile(Te, filepath.Join(dir, "c.yaml"), "docking:\n  top_k: 120\n  grid_step: 0.5\nlog:\n  format: json\n")
	Te.Setenv("SPINDOCK_DOCKING_WORKERS", "3")
	Te.Setenv("SPINDOCK_LOG_LEVEL", "debug")
	C, err = LoadConfig(f)
	require.NoError(Te, err)
	assert.Equal(Te, 120, C.Docking.TopK)
	assert.Equal(Te, 0.5, C.Docking.GridStep)
	assert.Equal(Te, 1.0, C.Docking.BinSize)
	assert.Equal(Te, 3, C.Docking.Workers)
	assert.Equal(Te, "debug", C.Log.Level)
	assert.Equal(Te, "json", C.Log.Format)
	log, err := C.Logger()
	require.NoError(Te, err)
	assert.NotNil(Te, log)

	bad := writeFile(Te, filepath.Join(dir, "bad.yaml"), "docking:\n  overlap_fraction: 2\n")
	_, err = LoadConfig(bad)
	assert.True(Te, dock.IsBadOptions(err))
	bad = writeFile(Te, filepath.Join(dir, "fmt.yaml"), "log:\n  format: xml\n")
	_, err = LoadConfig(bad)
	assert.True(Te, dock.IsBadOptions(err))
	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(Te, err)
}

func TestConfigCommand(Te *testing.T) {
	out, err := run(Te, "config", "--log-level", "error")
	require.NoError(Te, err)
	C := new(Config)
	require.NoError(Te, yaml.Unmarshal([]byte(out), C))
	assert.Equal(Te, 50000, C.Docking.TopK)
	assert.Equal(Te, "error", C.Log.Level)
	_, err = run(Te, "config", "--log-level", "loud")
	assert.True(Te, dock.IsBadOptions(err))
}

func TestDockCommand(Te *testing.T) {
	dir := Te.TempDir()
	p, n := testsurf.Ellipsoid(60, 7, 5, 4)
	rec := testsurf.Surface("rec", p, n, nil)
	known := align.AxisAngle(r3.Vec{Z: 1}, math.Pi/2, r3.Vec{X: 10})
	lig := testsurf.Flipped(rec, "lig").Transform(known)
	for name, S := range map[string]*dock.Surface{"rec.obj": rec, "lig.obj": lig} {
		w, err := surfio.Create(filepath.Join(dir, name))
		require.NoError(Te, err)
		require.NoError(Te, surfio.WriteOBJ(w, S))
		require.NoError(Te, w.Close())
	}
	var pdb bytes.Buffer
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&pdb, "ATOM  %5d  CA  GLY A%4d    %8.3f%8.3f%8.3f  1.00  0.00           C\n", i+1, i+1, 10+float64(i), 1.0, 0.0)
	}
	writeFile(Te, filepath.Join(dir, "lig.pdb"), pdb.String())
	cfg := writeFile(Te, filepath.Join(dir, "spindock.yaml"), fmt.Sprintf(
		"docking:\n  top_k: 120\n  overlap_fraction: 1\n  workers: 4\nlog:\n  level: error\noutput:\n  dir: %q\n  structures: 2\n  plot_bins: 10\n", dir))
	in := func(name string) string { return filepath.Join(dir, name) }

	out, err := run(Te, "dock", in("rec.obj"), in("lig.obj"), "-c", cfg,
		"--lig-structure", in("lig.pdb"), "--out", in("poses.json.gz"), "--metrics", in("run.prom"),
		"--plot", in("scores.png"), "--pairs-plot", in("pairs.svg"), "--ply", in("best"))
	require.NoError(Te, err)
	assert.Contains(Te, out, "rank")

	T, err := surfio.ReadPosesFile(in("poses.json.gz"))
	require.NoError(Te, err)
	require.NotEmpty(Te, T)
	for _, f := range []string{"lig_001.pdb", "scores.png", "pairs.svg", "best_rec.ply", "best_lig.ply"} {
		_, err := os.Stat(in(f))
		assert.NoError(Te, err, f)
	}
	moved, err := surfio.ReadStructureFile(in("lig_001.pdb"))
	require.NoError(Te, err)
	assert.Len(Te, moved.Atoms, 3)
	assert.InDelta(Te, 0, r3.Norm(r3.Sub(T[0].Apply(r3.Vec{X: 10, Y: 1}), moved.Atoms[0].Pos)), 2e-3)
	prom, err := os.ReadFile(in("run.prom"))
	require.NoError(Te, err)
	assert.Contains(Te, string(prom), `spindock_runs_total{status="ok",variant="geometry"} 1`)

	out, err = run(Te, "rescore", in("rec.obj"), in("lig.obj"), in("poses.json.gz"), "-c", cfg, "--all")
	require.NoError(Te, err)
	assert.Contains(Te, out, "score")

	_, err = run(Te, "dock", in("rec.obj"), in("lig.obj"), "-c", cfg, "--variant", "electrostatic", "--out", in("e.json"))
	assert.True(Te, dock.IsNoAttribute(err))
	_, err = run(Te, "dock", in("rec.obj"), in("lig.obj"), "-c", cfg, "--variant", "vdw")
	assert.True(Te, dock.IsBadOptions(err))
	_, err = run(Te, "dock", in("rec.obj"))
	assert.Error(Te, err)
}

func TestLoadMolecule(Te *testing.T) {
	dir := Te.TempDir()
	p, n := testsurf.Ellipsoid(60, 7, 5, 4)
	name := filepath.Join(dir, "ell.obj")
	w, err := surfio.Create(name)
	require.NoError(Te, err)
	require.NoError(Te, surfio.WriteOBJ(w, testsurf.Surface("ell", p, n, nil)))
	require.NoError(Te, w.Close())

	core, logs := observer.New(zap.DebugLevel)
	M, err := loadMolecule(context.Background(), name, "", nil, 2, zap.New(core))
	require.NoError(Te, err)
	assert.Nil(Te, M.structure)
	entries := logs.FilterMessage("surface read").All()
	require.Len(Te, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(Te, int64(M.surface.Len()), fields["points"])
	assert.InDelta(Te, M.surface.Diameter(), fields["diameter"], 1e-12)
	assert.Greater(Te, fields["diameter"], 0.0)
	assert.LessOrEqual(Te, fields["diameter"], 14.001)
	assert.Contains(Te, fields, "average_edge")

	core, logs = observer.New(zap.InfoLevel)
	_, err = loadMolecule(context.Background(), name, "", nil, 2, zap.New(core))
	require.NoError(Te, err)
	assert.Zero(Te, logs.FilterMessage("surface read").Len())
	_, err = loadMolecule(context.Background(), filepath.Join(dir, "missing.obj"), "", nil, 2, zap.New(core))
	assert.Error(Te, err)
}
