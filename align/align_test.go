/*
 * align_test.go, part of spindock.
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

package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

func cloud() []r3.Vec {
	return []r3.Vec{
		{X: 0.5, Y: 1.2, Z: -0.3},
		{X: 2.1, Y: -0.7, Z: 0.9},
		{X: -1.4, Y: 0.3, Z: 1.8},
		{X: 0.2, Y: -2.2, Z: -1.1},
		{X: 3.3, Y: 1.9, Z: 0.4},
		{X: -0.8, Y: -1.5, Z: 2.6},
	}
}

func TestAxisAngle(Te *testing.T) {
	T := AxisAngle(r3.Vec{Z: 2}, math.Pi/2, r3.Vec{X: 10})
	p := T.Apply(r3.Vec{X: 1})
	assert.InDelta(Te, 10, p.X, 1e-12)
	assert.InDelta(Te, 1, p.Y, 1e-12)
	n := T.Rotate(r3.Vec{X: 1})
	assert.InDelta(Te, 0, n.X, 1e-12)
	assert.InDelta(Te, 1.0, T.Det(), 1e-12)
	I := T.Compose(T.Inverse())
	assert.Less(Te, I.MaxDiff(Identity()), 1e-12)
	M := T.Matrix()
	assert.Equal(Te, 1.0, M.At(3, 3))
	assert.Equal(Te, 10.0, M.At(0, 3))
	B, err := FromMatrix(M)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, B.MaxDiff(T))
	_, err = FromMatrix(mat.NewDense(3, 3, nil))
	assert.Error(Te, err)
	assert.Equal(Te, []float64{0, 0, 0, 1}, T.Rows()[3])
	Te.Log("\n", T)
}

//A known rigid motion must be recovered exactly.
func TestSuperKnown(Te *testing.T) {
	templa := cloud()
	known := AxisAngle(r3.Vec{X: 1, Y: -2, Z: 0.5}, 2.1, r3.Vec{X: 3, Y: -7, Z: 1.5})
	test := known.Inverse().ApplyAll(templa)
	T, err := Super(test, templa)
	require.NoError(Te, err)
	assert.Less(Te, T.MaxDiff(known), 1e-6)
	assert.InDelta(Te, 1.0, T.Det(), 1e-9)
	rmsd, err := TransformedRMSD(T, test, templa)
	require.NoError(Te, err)
	assert.InDelta(Te, 0, rmsd, 1e-6)
}

//A mirror image can't be superimposed, but the result must still be a
//proper rotation.
func TestSuperReflection(Te *testing.T) {
	templa := cloud()
	test := make([]r3.Vec, len(templa))
	for i, p := range templa {
		test[i] = r3.Vec{X: -p.X, Y: p.Y, Z: p.Z}
	}
	T, err := Super(test, templa)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, T.Det(), 1e-9)
	rmsd, err := TransformedRMSD(T, test, templa)
	require.NoError(Te, err)
	assert.Greater(Te, rmsd, 0.1)
}

func TestSuperPlanar(Te *testing.T) {
	templa := []r3.Vec{{X: 0}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	known := AxisAngle(r3.Vec{Y: 1}, 0.7, r3.Vec{Z: 4})
	T, err := Super(known.Inverse().ApplyAll(templa), templa)
	require.NoError(Te, err)
	assert.Less(Te, T.MaxDiff(known), 1e-6)
}

func TestSuperDegenerate(Te *testing.T) {
	c := cloud()
	_, err := Super(c[:2], c[:2])
	assert.True(Te, dock.IsDegenerateFit(err), "%v", err)
	line := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 5}}
	_, err = Super(line, line)
	assert.True(Te, dock.IsDegenerateFit(err), "%v", err)
	_, err = Super(c[:3], c[:4])
	assert.Error(Te, err)
	assert.False(Te, dock.IsDegenerateFit(err))
	//SuperNoCheck still gives a transform that maps the points.
	T := SuperNoCheck(line, line)
	assert.InDelta(Te, 1.0, T.Det(), 1e-9)
	for _, p := range line {
		assert.InDelta(Te, 0, dock.Distance(T.Apply(p), p), 1e-9)
	}
	assert.Equal(Te, Identity(), SuperNoCheck(nil, nil))
}

func TestCliqueTransform(Te *testing.T) {
	pts := cloud()
	normals := make([]r3.Vec, len(pts))
	for i := range normals {
		normals[i] = r3.Vec{Z: 1}
	}
	rec, err := dock.NewSurface("rec", pts, normals, nil, nil)
	require.NoError(Te, err)
	known := AxisAngle(r3.Vec{Z: 1}, math.Pi/2, r3.Vec{X: 10})
	lig := rec.Rename("lig").Transform(known)
	c := dock.Clique{{Rec: 0, Lig: 0}, {Rec: 2, Lig: 2}, {Rec: 3, Lig: 3}, {Rec: 5, Lig: 5}}
	T := CliqueTransform(rec, lig, c)
	assert.Less(Te, T.MaxDiff(known.Inverse()), 1e-6)
	_, err = RMSD(pts, pts[:2])
	assert.Error(Te, err)
}
