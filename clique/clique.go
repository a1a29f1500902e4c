/*
 * clique.go, part of spindock.
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

//Package clique enumerates the maximal cliques of a compatibility graph with
//the Bron-Kerbosch algorithm with Tomita's pivoting. Branches are pruned as
//soon as the partial clique fails a geometric Gate, and large branches are
//explored concurrently.
package clique

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/bits-and-blooms/bitset"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/compat"
)

//Params controls the search.
type Params struct {
	//Smallest clique reported, at least 3.
	MinSize int
	//Branches with at least SpawnThreshold candidates are explored in their own
	//goroutines. A branch with SpawnCap children running waits for the first
	//DrainCount of them to finish before starting more.
	SpawnThreshold int
	SpawnCap       int
	DrainCount     int
}

//ParamsFrom takes the search parameters from the docking options.
func ParamsFrom(O *dock.Options) Params {
	return Params{MinSize: O.MinCliqueSize, SpawnThreshold: O.SpawnThreshold, SpawnCap: O.SpawnCap, DrainCount: O.DrainCount}
}

//DefaultParams returns the parameters in dock.DefaultOptions.
func DefaultParams() Params {
	return ParamsFrom(dock.DefaultOptions())
}

type enumerator struct {
	G      *compat.Graph
	gate   Gate
	P      Params
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	failure error
}

//fail records the first task failure and stops the whole search.
func (E *enumerator) fail(err error) {
	E.mu.Lock()
	if E.failure == nil {
		E.failure = err
	}
	E.mu.Unlock()
	E.cancel()
}

//Enumerate returns the maximal cliques of G with at least P.MinSize matches
//such that every partial clique of 3 or more matches on the way to them passed
//the gate. A nil gate is the same as Permissive.
//
//The cliques are sorted (see dock.Clique.Sorted and dock.Clique.Less) so the
//result doesn't depend on the order in which the concurrent branches finish.
//If any branch fails (panics) the whole search fails with a TaskFailure error
//and no cliques are returned.
func Enumerate(ctx context.Context, G *compat.Graph, gate Gate, P Params) ([]dock.Clique, error) {
	if P.MinSize < 3 || P.SpawnThreshold < 1 || P.SpawnCap < 1 || P.DrainCount < 1 || P.DrainCount > P.SpawnCap {
		return nil, dock.NewError(dock.BadOptions, fmt.Sprintf("clique search parameters %+v", P), true, "Enumerate")
	}
	n := G.Len()
	if n == 0 {
		return nil, nil
	}
	if gate == nil {
		gate = Permissive
	}
	E := &enumerator{G: G, gate: gate, P: P}
	E.ctx, E.cancel = context.WithCancel(ctx)
	defer E.cancel()
	p := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		p.Set(uint(i))
	}
	found, err := E.safeTask(nil, p, bitset.New(uint(n)))
	E.mu.Lock()
	failure := E.failure
	E.mu.Unlock()
	if failure != nil {
		return nil, failure
	}
	if err != nil {
		return nil, dock.ErrDecorate(err, "Enumerate")
	}
	ret := make([]dock.Clique, len(found))
	for i, nodes := range found {
		c := make(dock.Clique, len(nodes))
		for k, v := range nodes {
			c[k] = G.Match(v)
		}
		ret[i] = c.Sorted()
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret, nil
}

//safeTask runs a branch, turning panics into TaskFailure errors.
func (E *enumerator) safeTask(r []int, p, x *bitset.BitSet) (found [][]int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = dock.NewError(dock.TaskFailure, fmt.Sprintf("%v\n%s", rec, debug.Stack()), true, "clique task")
			found = nil
			E.fail(err)
		}
	}()
	return E.task(r, p, x)
}

//future is a branch running in its own goroutine.
type future struct {
	done  chan struct{}
	found [][]int
	err   error
}

func (E *enumerator) fork(r []int, p, x *bitset.BitSet) *future {
	f := &future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.found, f.err = E.safeTask(r, p, x)
	}()
	return f
}

func (f *future) join() ([][]int, error) {
	<-f.done
	return f.found, f.err
}

//pivot returns the node in P or X with the most neighbours in P.
func (E *enumerator) pivot(p, x *bitset.BitSet) (int, bool) {
	best, bestn := -1, -1
	for _, set := range []*bitset.BitSet{p, x} {
		for u, ok := set.NextSet(0); ok; u, ok = set.NextSet(u + 1) {
			var c int
			for _, v := range E.G.Neighbors(int(u)) {
				if p.Test(uint(v)) {
					c++
				}
			}
			if c > bestn {
				best, bestn = int(u), c
			}
		}
	}
	return best, best >= 0
}

//neighbors returns s intersected with the neighbours of v.
func (E *enumerator) neighbors(s *bitset.BitSet, v int) *bitset.BitSet {
	ret := bitset.New(uint(E.G.Len()))
	for _, u := range E.G.Neighbors(v) {
		if s.Test(uint(u)) {
			ret.Set(uint(u))
		}
	}
	return ret
}

//candidates returns P minus the neighbours of the pivot, in increasing order.
func (E *enumerator) candidates(p, x *bitset.BitSet) []int {
	piv, ok := E.pivot(p, x)
	if !ok {
		return nil
	}
	c := p.Clone()
	for _, u := range E.G.Neighbors(piv) {
		c.Clear(uint(u))
	}
	ret := make([]int, 0, c.Count())
	for u, ok := c.NextSet(0); ok; u, ok = c.NextSet(u + 1) {
		ret = append(ret, int(u))
	}
	return ret
}

//valid applies the gate to r, if it is large enough.
func (E *enumerator) valid(r []int) bool {
	if len(r) <= 2 {
		return true
	}
	members := make([]dock.PointMatch, len(r))
	for i, v := range r {
		members[i] = E.G.Match(v)
	}
	return E.gate(members)
}

//extend adds v to r, returning a new slice.
func extend(r []int, v int) []int {
	ret := make([]int, len(r)+1)
	copy(ret, r)
	ret[len(r)] = v
	return ret
}

//task explores the branch (r, p, x). It owns p and x, and modifies them.
//Large branches fork one goroutine per child branch, small ones recurse.
func (E *enumerator) task(r []int, p, x *bitset.BitSet) ([][]int, error) {
	if int(p.Count()) < E.P.SpawnThreshold {
		return E.recurse(r, p, x)
	}
	var found [][]int
	var pending []*future
	var firstErr error
	collect := func(f *future) {
		res, err := f.join()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		found = append(found, res...)
	}
	for _, v := range E.candidates(p, x) {
		if firstErr != nil {
			break
		}
		if err := E.ctx.Err(); err != nil {
			firstErr = err
			break
		}
		rv := extend(r, v)
		if E.valid(rv) {
			pn := E.neighbors(p, v)
			xn := E.neighbors(x, v)
			if pn.None() {
				if xn.None() && len(rv) >= E.P.MinSize {
					found = append(found, rv)
				}
			} else {
				pending = append(pending, E.fork(rv, pn, xn))
				if len(pending) >= E.P.SpawnCap {
					for _, f := range pending[:E.P.DrainCount] {
						collect(f)
					}
					pending = append(pending[:0], pending[E.P.DrainCount:]...)
				}
			}
		}
		p.Clear(uint(v))
		x.Set(uint(v))
	}
	//children are always waited for, even after a failure.
	for _, f := range pending {
		collect(f)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return found, nil
}

func (E *enumerator) recurse(r []int, p, x *bitset.BitSet) ([][]int, error) {
	if err := E.ctx.Err(); err != nil {
		return nil, err
	}
	var found [][]int
	for _, v := range E.candidates(p, x) {
		rv := extend(r, v)
		if E.valid(rv) {
			pn := E.neighbors(p, v)
			xn := E.neighbors(x, v)
			if pn.None() {
				if xn.None() && len(rv) >= E.P.MinSize {
					found = append(found, rv)
				}
			} else {
				sub, err := E.recurse(rv, pn, xn)
				if err != nil {
					return nil, err
				}
				found = append(found, sub...)
			}
		}
		p.Clear(uint(v))
		x.Set(uint(v))
	}
	return found, nil
}
