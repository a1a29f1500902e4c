/*
 * rmsd.go, part of spindock.
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

	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//RMSD returns the root mean square deviation between test and templa,
//without superimposing them.
func RMSD(test, templa []r3.Vec) (float64, error) {
	if len(test) != len(templa) || len(test) == 0 {
		return 0, dock.NewError(dock.BadMatrix, fmt.Sprintf("ill-formed sets for RMSD: %d and %d points", len(test), len(templa)), true, "RMSD")
	}
	var rmsd float64
	for i, p := range test {
		d := r3.Sub(p, templa[i])
		rmsd += r3.Dot(d, d)
	}
	return math.Sqrt(rmsd / float64(len(test))), nil
}

//TransformedRMSD returns the RMSD between test, transformed by T, and templa.
//With test and templa restricted to interface points, this is the iRMSD used
//to judge a pose against a known complex.
func TransformedRMSD(T Transform, test, templa []r3.Vec) (float64, error) {
	r, err := RMSD(T.ApplyAll(test), templa)
	if err != nil {
		return r, dock.ErrDecorate(err, "TransformedRMSD")
	}
	return r, nil
}
