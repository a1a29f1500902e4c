/*
 * topk.go, part of spindock.
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
	"container/heap"
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/spin"
)

//worst is a heap of matches with the worst one, according to
//dock.PointMatch.Before, on top.
type worst []dock.PointMatch

func (h worst) Len() int            { return len(h) }
func (h worst) Less(i, j int) bool  { return h[j].Before(h[i]) }
func (h worst) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *worst) Push(x interface{}) { *h = append(*h, x.(dock.PointMatch)) }
func (h *worst) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

//offer adds m to the heap if it has fewer than k elements, or if m is better than its worst one.
func (h *worst) offer(m dock.PointMatch, k int) {
	if len(*h) < k {
		heap.Push(h, m)
		return
	}
	if m.Before((*h)[0]) {
		(*h)[0] = m
		heap.Fix(h, 0)
	}
}

//TopK returns the k best receptor/ligand point pairs, scored by the
//correlation of their spin images plus, if bonus is not nil, the bonus.
//The result has min(k, len(rec)*len(lig)) matches, sorted by decreasing score,
//ties broken by increasing receptor and then ligand index, so it is fully
//determined by the input. The ligand points are split among workers
//goroutines, each keeping its own k best pairs.
func TopK(ctx context.Context, rec, lig spin.Stack, k int, bonus Bonus, workers int) ([]dock.PointMatch, error) {
	if k <= 0 || len(rec) == 0 || len(lig) == 0 {
		return nil, nil
	}
	chunks := dock.Chunks(len(lig), workers)
	partial := make([]worst, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	for n, c := range chunks {
		n, c := n, c
		g.Go(func() error {
			h := make(worst, 0, min(k, len(rec)*(c[1]-c[0])))
			var C spin.Correlator
			for _, r := range rec {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, l := range lig[c[0]:c[1]] {
					score := C.Correlate(r, l)
					if bonus != nil {
						score += bonus.Bonus(r.Point(), l.Point())
					}
					if math.IsNaN(score) {
						score = math.Inf(-1)
					}
					h.offer(dock.PointMatch{Rec: r.Point(), Lig: l.Point(), Score: score}, k)
				}
			}
			partial[n] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "TopK")
	}
	var total int
	for _, h := range partial {
		total += len(h)
	}
	ret := make([]dock.PointMatch, 0, total)
	for _, h := range partial {
		ret = append(ret, h...)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Before(ret[j]) })
	if len(ret) > k {
		ret = ret[:k]
	}
	return ret, nil
}
