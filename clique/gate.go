/*
 * gate.go, part of spindock.
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

package clique

import (
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/align"
)

//Gate decides whether a partial clique, given as its matches, may still lead
//to a pose. It is only asked about cliques of 3 or more matches and must be
//safe for concurrent use.
type Gate func(members []dock.PointMatch) bool

//Permissive accepts every clique, turning the search into a plain maximal
//clique enumeration.
func Permissive([]dock.PointMatch) bool { return true }

//NormalsGate returns a Gate that superimposes the ligand points of the clique on
//their receptor points and accepts the clique only if, after the superposition,
//every ligand normal points against its receptor normal (their dot product is
//not positive).
func NormalsGate(rec, lig *dock.Surface) Gate {
	return func(members []dock.PointMatch) bool {
		return NormalsConsistent(rec, lig, members, align.CliqueTransform(rec, lig, members))
	}
}

//NormalsConsistent returns true if, for every match, the ligand normal
//rotated by T points against the receptor normal.
func NormalsConsistent(rec, lig *dock.Surface, members []dock.PointMatch, T align.Transform) bool {
	for _, m := range members {
		if r3.Dot(rec.Normal(m.Rec), T.Rotate(lig.Normal(m.Lig))) > 0 {
			return false
		}
	}
	return true
}
