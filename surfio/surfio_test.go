/*
 * surfio_test.go, part of spindock.
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

package surfio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/align"
	"github.com/rmera/spindock/engine"
	"github.com/rmera/spindock/histo"
	"github.com/rmera/spindock/internal/testsurf"
)

func pdbLine(rec string, id int, name, res, chain string, resid int, p r3.Vec) string {
	return fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s", rec, id, name, res, chain, resid, p.X, p.Y, p.Z, 1.0, 0.0, strings.TrimSpace(name)[:1])
}

func TestOBJRoundTrip(Te *testing.T) {
	p, n := testsurf.Ellipsoid(30, 3, 2, 1)
	faces := []dock.Face{{0, 1, 2}, {1, 2, 3}, {27, 28, 29}}
	S, err := dock.NewSurface("ell", p, n, faces, nil)
	require.NoError(Te, err)
	var b bytes.Buffer
	require.NoError(Te, WriteOBJ(&b, S))
	R, err := ReadOBJ(&b, "again")
	require.NoError(Te, err)
	require.Equal(Te, S.Len(), R.Len())
	assert.Equal(Te, "again", R.Name())
	assert.Equal(Te, faces, R.Faces())
	for i := 0; i < S.Len(); i++ {
		assert.InDelta(Te, 0, r3.Norm(r3.Sub(S.Point(i), R.Point(i))), 1e-5)
		assert.InDelta(Te, 0, r3.Norm(r3.Sub(S.Normal(i), R.Normal(i))), 1e-5)
	}

	obj := "# a comment\no ignored\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nvn 0 0 1\nvn 0 0 2\nvt 0.5 0.5\nf 1/1/1 2/1/2 3/1/3\n"
	R, err = ReadOBJ(strings.NewReader(obj), "tri")
	require.NoError(Te, err)
	assert.Equal(Te, 3, R.Len())
	assert.Equal(Te, []dock.Face{{0, 1, 2}}, R.Faces())
	assert.InDelta(Te, 1, R.Normal(2).Z, 1e-12)

	var ply bytes.Buffer
	require.NoError(Te, WritePLY(&ply, R, []int{1}))
	assert.Contains(Te, ply.String(), "element vertex 3\n")
	assert.Contains(Te, ply.String(), "1.000000 0.000000 0.000000 0.000000 0.000000 1.000000 255 0 0\n")
	assert.Contains(Te, ply.String(), "3 0 1 2\n")
}

func TestOBJErrors(Te *testing.T) {
	for name, obj := range map[string]string{
		"short":   "v 1 2\n",
		"number":  "v 1 2 x\n",
		"quad":    "v 0 0 0\nvn 0 0 1\nf 1 1 1 1\n",
		"index":   "v 0 0 0\nvn 0 0 1\nf 1 a 1\n",
		"normals": "v 0 0 0\nvn 0 0 x\n",
	} {
		_, err := ReadOBJ(strings.NewReader(obj), name)
		assert.True(Te, dock.IsBadFile(err), "%s: %v", name, err)
	}
	_, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 1 1\nvn 0 0 1\n"), "count")
	assert.True(Te, dock.IsBadSurface(err))
	_, err = ReadOBJ(strings.NewReader("v 0 0 0\nvn 0 0 1\nf 1 1 2\n"), "range")
	assert.True(Te, dock.IsBadSurface(err))
	_, err = ReadOBJ(strings.NewReader(""), "empty")
	assert.True(Te, dock.IsBadSurface(err))
}

func TestCompression(Te *testing.T) {
	dir := Te.TempDir()
	text := strings.Repeat("v 1.000000 2.000000 3.000000\n", 500)
	for _, ext := range []string{".obj", ".obj.gz", ".obj.zst", ".OBJ.ZSTD"} {
		name := filepath.Join(dir, "s"+ext)
		w, err := Create(name)
		require.NoError(Te, err)
		_, err = io.WriteString(w, text)
		require.NoError(Te, err)
		require.NoError(Te, w.Close())
		raw, err := os.ReadFile(name)
		require.NoError(Te, err)
		switch Format(name) {
		case Gzip:
			assert.Equal(Te, []byte{0x1f, 0x8b}, raw[:2])
		case Zstd:
			assert.Equal(Te, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])
		}
		if Format(name) != Plain {
			assert.Less(Te, len(raw), len(text))
		} else {
			assert.Equal(Te, text, string(raw))
		}
		r, err := Open(name)
		require.NoError(Te, err)
		back, err := io.ReadAll(r)
		require.NoError(Te, err)
		require.NoError(Te, r.Close())
		assert.Equal(Te, text, string(back), ext)
	}
	assert.Equal(Te, Zstd, Format("a.ZSTD"))
	assert.Equal(Te, Plain, Format("a.gzip"))
	_, err := NewReader(strings.NewReader("not gzip"), Gzip)
	assert.Error(Te, err)
	_, err = Open(filepath.Join(dir, "missing.obj"))
	assert.Error(Te, err)
}

func TestPDB(Te *testing.T) {
	lines := []string{
		"REMARK   a structure",
		pdbLine("ATOM", 1, " N", "ALA", "A", 1, r3.Vec{X: 11.104, Y: 6.134, Z: -6.504}),
		pdbLine("ATOM", 2, " CA", "ALA", "A", 1, r3.Vec{X: 11.639, Y: 6.071, Z: -5.147}),
		pdbLine("HETATM", 3, "ZN", "ZN", "B", 101, r3.Vec{X: -1, Y: 2, Z: 3.5}),
		"TER",
		"ENDMDL",
		pdbLine("ATOM", 1, " N", "ALA", "A", 1, r3.Vec{}),
	}
	S, err := ReadPDB(strings.NewReader(strings.Join(lines, "\n")), "t.pdb")
	require.NoError(Te, err)
	require.Len(Te, S.Atoms, 3)
	ca := S.Atoms[1]
	assert.Equal(Te, 2, ca.ID)
	assert.Equal(Te, "CA", ca.Name)
	assert.Equal(Te, "ALA", ca.MolName)
	assert.Equal(Te, "A", ca.Chain)
	assert.Equal(Te, 1, ca.MolID)
	assert.Equal(Te, "ALA_CA", ca.ResAtom())
	assert.Equal(Te, r3.Vec{X: 11.639, Y: 6.071, Z: -5.147}, ca.Pos)
	assert.Equal(Te, 101, S.Atoms[2].MolID)
	assert.Equal(Te, S.Atoms[2].Pos, S.Coords()[2])

	T := align.AxisAngle(r3.Vec{Z: 1}, 0, r3.Vec{X: 1})
	var b bytes.Buffer
	require.NoError(Te, WritePDB(&b, S, T))
	out := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(Te, out, 4)
	assert.Equal(Te, "END", out[3])
	for i, l := range out[:3] {
		assert.Equal(Te, lines[i+1][:30], l[:30])
		assert.Equal(Te, lines[i+1][54:], l[54:])
	}
	M, err := ReadPDB(strings.NewReader(b.String()), "moved")
	require.NoError(Te, err)
	for i, a := range M.Atoms {
		assert.InDelta(Te, S.Atoms[i].Pos.X+1, a.Pos.X, 1e-9)
		assert.InDelta(Te, S.Atoms[i].Pos.Y, a.Pos.Y, 1e-9)
	}

	_, err = ReadPDB(strings.NewReader("ATOM      1  N   ALA A   1      11.104"), "short")
	assert.True(Te, dock.IsBadFile(err))
	bad := []byte(lines[1])
	copy(bad[30:38], "   x.000")
	_, err = ReadPDB(bytes.NewReader(bad), "coord")
	assert.True(Te, dock.IsBadFile(err))
}

func TestPQR(Te *testing.T) {
	pqr := "REMARK pqr\n" +
		"ATOM      1  N   ALA A   1      11.104   6.134  -6.504 -0.3000 1.8240\n" +
		"ATOM      2  CA  ALA     1      11.639   6.071  -5.147  0.0337 1.9080\n"
	dir := Te.TempDir()
	name := filepath.Join(dir, "t.pqr.gz")
	w, err := Create(name)
	require.NoError(Te, err)
	_, err = io.WriteString(w, pqr)
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	S, err := ReadStructureFile(name)
	require.NoError(Te, err)
	require.Len(Te, S.Atoms, 2)
	assert.Equal(Te, "A", S.Atoms[0].Chain)
	assert.Equal(Te, "", S.Atoms[1].Chain)
	assert.Equal(Te, 1, S.Atoms[1].MolID)
	assert.Equal(Te, -0.3, S.Atoms[0].Charge)
	assert.Equal(Te, 1.908, S.Atoms[1].Radius)
	assert.Equal(Te, r3.Vec{X: 11.639, Y: 6.071, Z: -5.147}, S.Atoms[1].Pos)

	var b bytes.Buffer
	require.NoError(Te, WritePDB(&b, S, align.Identity()))
	P, err := ReadPDB(&b, "from pqr")
	require.NoError(Te, err)
	require.Len(Te, P.Atoms, 2)
	for i, a := range P.Atoms {
		assert.Equal(Te, S.Atoms[i].ResAtom(), a.ResAtom())
		assert.Equal(Te, S.Atoms[i].Chain, a.Chain)
		assert.InDelta(Te, 0, r3.Norm(r3.Sub(S.Atoms[i].Pos, a.Pos)), 1e-9)
	}

	_, err = ReadPQR(strings.NewReader("ATOM 1 N ALA 1 1.0 2.0 3.0 0.1\n"), "few")
	assert.True(Te, dock.IsBadFile(err))
	_, err = ReadPQR(strings.NewReader("ATOM 1 N ALA 1 1.0 2.0 z 0.1 1.5\n"), "nan")
	assert.True(Te, dock.IsBadFile(err))
}

func TestContributions(Te *testing.T) {
	table := "# residue atom contribution\nALA CA 0.5\n\n  GLY N -0.25  \nALA CA 0.75\n"
	C, err := ReadContributions(strings.NewReader(table), "t")
	require.NoError(Te, err)
	assert.Equal(Te, map[string]float64{"ALA_CA": 0.75, "GLY_N": -0.25}, C)
	_, err = ReadContributions(strings.NewReader("ALA CA\n"), "t")
	assert.True(Te, dock.IsBadFile(err))
	_, err = ReadContributions(strings.NewReader("ALA CA x\n"), "t")
	assert.True(Te, dock.IsBadFile(err))
}

func TestPoses(Te *testing.T) {
	T1 := align.AxisAngle(r3.Vec{X: 1, Y: 1}, math.Pi/3, r3.Vec{X: 1.5, Y: -2, Z: 0.25})
	T2 := align.AxisAngle(r3.Vec{Z: 1}, -0.7, r3.Vec{Z: 4})
	thresholds := dock.DefaultOptions().PenetrationThresholds
	d1 := histo.NewData(thresholds, []float64{0.5, 0.5, -1.5})
	d2 := histo.NewData(thresholds, []float64{-4, 0})
	all := histo.NewData(thresholds, nil)
	all.Add(d1, d2)
	res := &engine.Result{
		RunID:    uuid.New(),
		Variant:  engine.Electrostatic,
		Receptor: "rec",
		Ligand:   "lig",
		Pairs:    10,
		Edges:    20,
		Cliques:  2,
		Elapsed:  1500 * time.Millisecond,
		Poses: []engine.ScoredPose{
			{Clique: dock.Clique{{Rec: 1, Lig: 2, Score: 0.9}, {Rec: 3, Lig: 4, Score: 0.8}, {Rec: 5, Lig: 6, Score: 0.7}}, Transform: T1, Score: 12, Depths: d1},
			{Clique: dock.Clique{{Rec: 7, Lig: 8}, {Rec: 9, Lig: 10}, {Rec: 11, Lig: 12}}, Transform: T2, Score: 3.5, Depths: d2},
		},
		Depths: all,
	}
	var b bytes.Buffer
	require.NoError(Te, WritePoses(&b, res, 0))
	text := b.String()
	R, err := ReadReport(strings.NewReader(text), "poses.json")
	require.NoError(Te, err)
	assert.Equal(Te, res.RunID.String(), R.RunID)
	assert.Equal(Te, "electrostatic", R.Variant)
	assert.Equal(Te, 1.5, R.Elapsed)
	require.Len(Te, R.Poses, 2)
	assert.Equal(Te, 2, R.Poses[1].Rank)
	assert.Equal(Te, []dock.PointMatch(res.Poses[0].Clique), R.Poses[0].Clique)
	require.NotNil(Te, R.Poses[0].Depths)
	assert.Equal(Te, []float64{0, 0, 1, 2}, R.Poses[0].Depths.View())
	assert.Equal(Te, 3, R.Poses[0].Depths.Total())
	require.NotNil(Te, R.Depths)
	assert.Equal(Te, []float64{1, 0, 1, 3}, R.Depths.View())
	assert.Equal(Te, 5, R.Depths.Total())
	P, err := ReadPoses(strings.NewReader(text), "poses.json")
	require.NoError(Te, err)
	require.Len(Te, P, 2)
	assert.Less(Te, P[0].MaxDiff(T1), 1e-12)
	assert.Less(Te, P[1].MaxDiff(T2), 1e-12)

	b.Reset()
	require.NoError(Te, WritePoses(&b, res, 1))
	P, err = ReadPoses(&b, "one")
	require.NoError(Te, err)
	assert.Len(Te, P, 1)

	_, err = ReadPoses(strings.NewReader(`{"poses":[],"depths":{"total":1,"dividers":[1,0],"histo":[1]}}`), "depths")
	assert.True(Te, dock.IsBadFile(err))
	_, err = ReadPoses(strings.NewReader("{"), "broken")
	assert.True(Te, dock.IsBadFile(err))
	_, err = ReadPoses(strings.NewReader(`{"poses":[{"rank":1,"matrix":[[1,0,0,0],[0,1,0,0],[0,0,1,0]]}]}`), "rows")
	assert.True(Te, dock.IsBadFile(err))
	_, err = ReadPoses(strings.NewReader(`{"poses":[{"rank":1,"matrix":[[1,0,0,0],[0,1,0],[0,0,1,0],[0,0,0,1]]}]}`), "cols")
	assert.True(Te, dock.IsBadFile(err))
}
