/*
 * match.go, part of spindock.
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

package dock

import (
	"fmt"
	"sort"
	"strings"
)

//PointMatch is a candidate correspondence between receptor point Rec and ligand
//point Lig. Two matches are the same match if their indexes are equal, the
//score is only metadata.
type PointMatch struct {
	Rec   int     `json:"rec"`
	Lig   int     `json:"lig"`
	Score float64 `json:"score"`
}

//MatchKey identifies a PointMatch.
type MatchKey struct {
	Rec, Lig int
}

func (m PointMatch) Key() MatchKey {
	return MatchKey{m.Rec, m.Lig}
}

//Same returns true if m and o refer to the same pair of points.
func (m PointMatch) Same(o PointMatch) bool {
	return m.Rec == o.Rec && m.Lig == o.Lig
}

func (m PointMatch) String() string {
	return fmt.Sprintf("(%d,%d %.4f)", m.Rec, m.Lig, m.Score)
}

//Before reports whether m sorts before o in a list of matches ordered by
//decreasing score. Ties are broken by the receptor index, then by the ligand one.
func (m PointMatch) Before(o PointMatch) bool {
	if m.Score != o.Score {
		return m.Score > o.Score
	}
	if m.Rec != o.Rec {
		return m.Rec < o.Rec
	}
	return m.Lig < o.Lig
}

//Clique is a set of mutually compatible matches.
type Clique []PointMatch

//Sorted returns a copy of the clique with the matches ordered by receptor index,
//then by ligand index.
func (C Clique) Sorted() Clique {
	ret := append(Clique(nil), C...)
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Rec != ret[j].Rec {
			return ret[i].Rec < ret[j].Rec
		}
		return ret[i].Lig < ret[j].Lig
	})
	return ret
}

//Less compares two cliques sorted with Sorted, lexicographically on their index pairs.
//A clique that is a prefix of the other sorts first.
func (C Clique) Less(o Clique) bool {
	for i := 0; i < len(C) && i < len(o); i++ {
		if C[i].Rec != o[i].Rec {
			return C[i].Rec < o[i].Rec
		}
		if C[i].Lig != o[i].Lig {
			return C[i].Lig < o[i].Lig
		}
	}
	return len(C) < len(o)
}

//Equal returns true if both cliques contain the same matches, in any order.
func (C Clique) Equal(o Clique) bool {
	if len(C) != len(o) {
		return false
	}
	a, b := C.Sorted(), o.Sorted()
	for i := range a {
		if !a[i].Same(b[i]) {
			return false
		}
	}
	return true
}

//Key returns a string that identifies the set of matches in the clique.
func (C Clique) Key() string {
	s := C.Sorted()
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = fmt.Sprintf("%d:%d", m.Rec, m.Lig)
	}
	return strings.Join(parts, ",")
}

//Indexes returns the receptor and the ligand point indexes of the clique, in order.
func (C Clique) Indexes() (rec, lig []int) {
	rec = make([]int, len(C))
	lig = make([]int, len(C))
	for i, m := range C {
		rec[i] = m.Rec
		lig[i] = m.Lig
	}
	return rec, lig
}

//CheckMatches returns an error if any match refers to a point outside
//the receptor or the ligand.
func CheckMatches(rec, lig *Surface, matches []PointMatch) error {
	for _, m := range matches {
		if m.Rec < 0 || m.Rec >= rec.Len() || m.Lig < 0 || m.Lig >= lig.Len() {
			return NewError(BadMatches, m.String(), true, "CheckMatches")
		}
	}
	return nil
}
