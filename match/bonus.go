/*
 * bonus.go, part of spindock.
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

package match

import (
	"fmt"
	"math"
	"sort"

	dock "github.com/rmera/spindock"
)

//Bonus is an extra term added to the spin image correlation of the receptor
//point rec and the ligand point lig. Implementations must be safe for concurrent use.
type Bonus interface {
	Bonus(rec, lig int) float64
}

//BonusFunc adapts an ordinary function to the Bonus interface.
type BonusFunc func(rec, lig int) float64

func (f BonusFunc) Bonus(rec, lig int) float64 { return f(rec, lig) }

//Sum returns a Bonus that adds up the given ones. Nil bonuses are ignored.
func Sum(bonuses ...Bonus) Bonus {
	var bs []Bonus
	for _, b := range bonuses {
		if b != nil {
			bs = append(bs, b)
		}
	}
	return BonusFunc(func(rec, lig int) float64 {
		var s float64
		for _, b := range bs {
			s += b.Bonus(rec, lig)
		}
		return s
	})
}

//Weighted returns b scaled by w.
func Weighted(b Bonus, w float64) Bonus {
	return BonusFunc(func(rec, lig int) float64 { return w * b.Bonus(rec, lig) })
}

//smallest absolute value accepted before taking logarithms.
const tiny = 1e-12

//logBonus scores the pair (rec, lig) with delta=-ln|a_rec + sign*a_lig|,
//rescaled to [0,1] with the extreme deltas over all the possible pairs,
//so the most complementary pair gets 1.
type logBonus struct {
	rec, lig []float64
	sign     float64
	lo, hi   float64
}

func delta(x float64) float64 {
	return -math.Log(math.Max(math.Abs(x), tiny))
}

func (b *logBonus) Bonus(rec, lig int) float64 {
	if b.hi == b.lo {
		return 0
	}
	d := delta(b.rec[rec] + b.sign*b.lig[lig])
	return (d - b.lo) / (b.hi - b.lo)
}

//extremes returns the smallest and the largest |a+sign*b| over every a in A and b in B.
//Sorting B makes it O((|A|+|B|)log|B|) instead of O(|A||B|).
func extremes(A, B []float64, sign float64) (min, max float64) {
	sorted := append([]float64(nil), B...)
	sort.Float64s(sorted)
	min = math.Inf(1)
	last := len(sorted) - 1
	for _, a := range A {
		//|a+sign*b| is the distance between b and -sign*a.
		t := -sign * a
		i := sort.SearchFloat64s(sorted, t)
		if i <= last {
			min = math.Min(min, math.Abs(sorted[i]-t))
		}
		if i > 0 {
			min = math.Min(min, math.Abs(sorted[i-1]-t))
		}
		max = math.Max(max, math.Max(math.Abs(sorted[0]-t), math.Abs(sorted[last]-t)))
	}
	return min, max
}

func newLogBonus(rec, lig *dock.Surface, attr string, sign float64) (Bonus, error) {
	a, ok := rec.Attribute(attr)
	if !ok {
		return nil, dock.NewError(dock.NoAttribute, fmt.Sprintf("%s has no %s attribute", rec.Name(), attr), true)
	}
	b, ok := lig.Attribute(attr)
	if !ok {
		return nil, dock.NewError(dock.NoAttribute, fmt.Sprintf("%s has no %s attribute", lig.Name(), attr), true)
	}
	min, max := extremes(a, b, sign)
	//delta decreases with the absolute value.
	return &logBonus{rec: a, lig: b, sign: sign, lo: delta(max), hi: delta(min)}, nil
}

//Electrostatic returns a Bonus that favours pairs of points with opposite
//electrostatic potentials, using delta=-ln|e_rec+e_lig|. Both surfaces must have
//the dock.Electrostatic attribute.
func Electrostatic(rec, lig *dock.Surface) (Bonus, error) {
	b, err := newLogBonus(rec, lig, dock.Electrostatic, 1)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Electrostatic")
	}
	return b, nil
}

//Lipophilic returns a Bonus that favours pairs of points with similar
//lipophilicity, using delta=-ln|l_rec-l_lig|. Both surfaces must have the
//dock.Lipophilic attribute.
func Lipophilic(rec, lig *dock.Surface) (Bonus, error) {
	b, err := newLogBonus(rec, lig, dock.Lipophilic, -1)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Lipophilic")
	}
	return b, nil
}
