/*
 * v3_test.go, part of spindock.
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

package v3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFromVecs(Te *testing.T) {
	A := FromVecs([]r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}})
	assert.Equal(Te, 3, A.NVecs())
	assert.Equal(Te, r3.Vec{X: 4, Y: 5, Z: 6}, A.Vec(1))
	assert.Equal(Te, r3.Vec{X: 4, Y: 5, Z: 6}, A.Centroid())
	B := Zeros(2)
	B.SetVec(1, A.Vec(2))
	assert.Equal(Te, r3.Vec{X: 7, Y: 8, Z: 9}, B.Vec(1))
	assert.Equal(Te, r3.Vec{}, B.Vec(0))
	assert.Panics(Te, func() { FromVecs(nil) })
}

func TestShifts(Te *testing.T) {
	A := FromVecs([]r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 3, Y: 5, Z: -1}})
	C := Zeros(2)
	C.SubVec(A, A.Centroid())
	assert.Equal(Te, r3.Vec{}, C.Centroid())
	assert.Equal(Te, r3.Vec{X: -1, Y: -2, Z: 1}, C.Vec(0))
	C.AddVec(C, r3.Vec{X: 2})
	assert.Equal(Te, r3.Vec{X: 1, Y: -2, Z: 1}, C.Vec(0))
	assert.Panics(Te, func() { Zeros(3).AddVec(A, r3.Vec{}) })
}
