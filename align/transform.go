/*
 * transform.go, part of spindock.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//Transform is a rigid transformation: a proper rotation followed by a translation.
//It acts on column vectors, so its 4x4 homogeneous matrix is
//
//	R00 R01 R02 t0
//	R10 R11 R12 t1
//	R20 R21 R22 t2
//	0   0   0   1
//
//A Transform is a value and is never modified after creation.
type Transform struct {
	rot   [3][3]float64
	trans r3.Vec
}

var _ dock.Transformer = Transform{}

//Identity returns the transformation that leaves every point in place.
func Identity() Transform {
	return Transform{rot: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

//AxisAngle returns a rotation of angle radians around the axis through the origin,
//followed by a translation by trans. It panics if axis has zero length.
func AxisAngle(axis r3.Vec, angle float64, trans r3.Vec) Transform {
	l := r3.Norm(axis)
	if l == 0 {
		panic("align: zero rotation axis")
	}
	u := r3.Scale(1/l, axis)
	c, s := math.Cos(angle), math.Sin(angle)
	C := 1 - c
	var T Transform
	T.rot = [3][3]float64{
		{c + u.X*u.X*C, u.X*u.Y*C - u.Z*s, u.X*u.Z*C + u.Y*s},
		{u.Y*u.X*C + u.Z*s, c + u.Y*u.Y*C, u.Y*u.Z*C - u.X*s},
		{u.Z*u.X*C - u.Y*s, u.Z*u.Y*C + u.X*s, c + u.Z*u.Z*C},
	}
	T.trans = trans
	return T
}

//FromMatrix builds a Transform from a 4x4 homogeneous matrix. The rotation block
//is not checked for orthonormality.
func FromMatrix(m mat.Matrix) (Transform, error) {
	var T Transform
	r, c := m.Dims()
	if r != 4 || c != 4 {
		return T, dock.NewError(dock.BadMatrix, fmt.Sprintf("transformation matrix must be 4x4, got %dx%d", r, c), true, "FromMatrix")
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			T.rot[i][j] = m.At(i, j)
		}
	}
	T.trans = r3.Vec{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}
	return T, nil
}

//Rotate applies only the rotation block to v. Use it for normals.
func (T Transform) Rotate(v r3.Vec) r3.Vec {
	r := &T.rot
	return r3.Vec{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

//Apply rotates and then translates p.
func (T Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(T.Rotate(p), T.trans)
}

//ApplyAll returns a new slice with every point of ps transformed.
func (T Transform) ApplyAll(ps []r3.Vec) []r3.Vec {
	ret := make([]r3.Vec, len(ps))
	for i, p := range ps {
		ret[i] = T.Apply(p)
	}
	return ret
}

//Translation returns the translation part of the transformation.
func (T Transform) Translation() r3.Vec { return T.trans }

//Rotation returns the 3x3 rotation block.
func (T Transform) Rotation() *mat.Dense {
	ret := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret.Set(i, j, T.rot[i][j])
		}
	}
	return ret
}

//Matrix returns the 4x4 homogeneous matrix of the transformation.
func (T Transform) Matrix() *mat.Dense {
	ret := mat.NewDense(4, 4, nil)
	ret.Slice(0, 3, 0, 3).(*mat.Dense).Copy(T.Rotation())
	ret.Set(0, 3, T.trans.X)
	ret.Set(1, 3, T.trans.Y)
	ret.Set(2, 3, T.trans.Z)
	ret.Set(3, 3, 1)
	return ret
}

//Rows returns the 4x4 homogeneous matrix as nested slices, handy for serialization.
func (T Transform) Rows() [][]float64 {
	t := []float64{T.trans.X, T.trans.Y, T.trans.Z}
	ret := make([][]float64, 4)
	for i := 0; i < 3; i++ {
		ret[i] = []float64{T.rot[i][0], T.rot[i][1], T.rot[i][2], t[i]}
	}
	ret[3] = []float64{0, 0, 0, 1}
	return ret
}

//Compose returns the transformation that applies first O and then T.
func (T Transform) Compose(O Transform) Transform {
	var ret Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				ret.rot[i][j] += T.rot[i][k] * O.rot[k][j]
			}
		}
	}
	ret.trans = T.Apply(O.trans)
	return ret
}

//Inverse returns the transformation that undoes T.
func (T Transform) Inverse() Transform {
	var ret Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ret.rot[i][j] = T.rot[j][i]
		}
	}
	ret.trans = r3.Scale(-1, ret.Rotate(T.trans))
	return ret
}

//Det returns the determinant of the rotation block, 1 for a proper rotation.
func (T Transform) Det() float64 {
	r := &T.rot
	return r[0][0]*(r[1][1]*r[2][2]-r[2][1]*r[1][2]) - r[1][0]*(r[0][1]*r[2][2]-r[2][1]*r[0][2]) + r[2][0]*(r[0][1]*r[1][2]-r[1][1]*r[0][2])
}

//MaxDiff returns the largest absolute difference between the homogeneous
//matrices of T and O.
func (T Transform) MaxDiff(O Transform) float64 {
	var d float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d = math.Max(d, math.Abs(T.rot[i][j]-O.rot[i][j]))
		}
	}
	d = math.Max(d, math.Abs(T.trans.X-O.trans.X))
	d = math.Max(d, math.Abs(T.trans.Y-O.trans.Y))
	return math.Max(d, math.Abs(T.trans.Z-O.trans.Z))
}

func (T Transform) String() string {
	return fmt.Sprintf("%v", mat.Formatted(T.Matrix(), mat.Squeeze()))
}
