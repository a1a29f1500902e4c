/*
 * super.go, part of spindock.
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
	v3 "github.com/rmera/spindock/v3"
)

//Ratio between the second and the first singular value of the covariance matrix
//below which a point set is considered collinear.
const collinear = 1e-10

//Super returns the rigid transformation that, applied to test, minimizes its
//RMSD to templa. Both slices must have the same length. It returns a DegenerateFit
//error for fewer than 3 points, or for collinear points, for which the
//rotation is not unique.
func Super(test, templa []r3.Vec) (Transform, error) {
	if len(test) != len(templa) {
		return Identity(), dock.NewError(dock.BadMatrix, fmt.Sprintf("%d test and %d template points", len(test), len(templa)), true, "Super")
	}
	if len(test) < 3 {
		return Identity(), dock.NewError(dock.DegenerateFit, fmt.Sprintf("%d points", len(test)), false, "Super")
	}
	T, err := RotatorTranslatorToSuper(v3.FromVecs(test), v3.FromVecs(templa), true)
	if err != nil {
		return T, dock.ErrDecorate(err, "Super")
	}
	return T, nil
}

//SuperNoCheck is Super without the degeneracy checks. It returns the identity
//for empty input. For degenerate input the rotation is one of the many
//that minimize the RMSD.
func SuperNoCheck(test, templa []r3.Vec) Transform {
	if len(test) == 0 || len(test) != len(templa) {
		return Identity()
	}
	T, _ := RotatorTranslatorToSuper(v3.FromVecs(test), v3.FromVecs(templa), false)
	return T
}

//Matches returns the receptor and ligand points of the given matches, in order.
func Matches(rec, lig *dock.Surface, matches []dock.PointMatch) (recpoints, ligpoints []r3.Vec) {
	recpoints = make([]r3.Vec, len(matches))
	ligpoints = make([]r3.Vec, len(matches))
	for i, m := range matches {
		recpoints[i] = rec.Point(m.Rec)
		ligpoints[i] = lig.Point(m.Lig)
	}
	return recpoints, ligpoints
}

//CliqueTransform returns the transformation that superimposes the ligand points
//of the matches on their receptor points.
func CliqueTransform(rec, lig *dock.Surface, matches []dock.PointMatch) Transform {
	r, l := Matches(rec, lig, matches)
	return SuperNoCheck(l, r)
}

//RotatorTranslatorToSuper superimposes the set of cartesian coordinates given as
//the rows of the matrix test on the rows of templa, using the Kabsch method:
//both sets are centered, the SVD of the covariance matrix
//H=ctest^T*ctempla=USV^T gives the rotation R=U*diag(1,1,d)*V^T, with
//d=sign(det(U)*det(V)) so R is never a reflection, and
//the superimposed coordinates are (test-c_test)*R+c_templa.
//The result is returned as a Transform acting on column vectors.
//If check is true, collinear sets return a DegenerateFit error.
func RotatorTranslatorToSuper(test, templa *v3.Matrix, check bool) (Transform, error) {
	tmr := templa.NVecs()
	tsr := test.NVecs()
	if tmr != tsr {
		return Identity(), dock.NewError(dock.BadMatrix, "ill-formed matrices", true, "RotatorTranslatorToSuper")
	}
	ctest := v3.Zeros(tsr)
	ctempla := v3.Zeros(tmr)
	cx := test.Centroid()
	cy := templa.Centroid()
	ctest.SubVec(test, cx)
	ctempla.SubVec(templa, cy)
	var H mat.Dense
	H.Mul(ctest.Dense.T(), ctempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(&H, mat.SVDFull); !ok {
		return Identity(), dock.NewError(dock.DegenerateFit, "SVD failed", false, "RotatorTranslatorToSuper")
	}
	if check {
		s := svd.Values(nil)
		if s[0] <= math.SmallestNonzeroFloat64 || s[1] <= collinear*s[0] {
			return Identity(), dock.NewError(dock.DegenerateFit, "collinear points", false, "RotatorTranslatorToSuper")
		}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	d := 1.0
	if mat.Det(&U)*mat.Det(&V) < 0 {
		d = -1
	}
	D := mat.NewDiagDense(3, []float64{1, 1, d})
	var UD, R mat.Dense
	UD.Mul(&U, D)
	R.Mul(&UD, V.T())
	//R acts on row vectors, a Transform on column ones.
	var T Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			T.rot[i][j] = R.At(j, i)
		}
	}
	T.trans = r3.Sub(cy, T.Rotate(cx))
	return T, nil
}
