/*
 * compat.go, part of spindock.
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

//Package compat builds the compatibility graph over candidate point matches.
//Two matches are compatible when the receptor and ligand patches they relate
//could touch each other in a single rigid pose.
package compat

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//Params contains the tolerances of the compatibility test.
type Params struct {
	DistanceTolerance float64 //A
	MaxAngleDelta     float64 //radians
}

//ParamsFrom takes the tolerances from the docking options.
func ParamsFrom(O *dock.Options) Params {
	return Params{DistanceTolerance: O.DistanceTolerance, MaxAngleDelta: O.MaxAngleDelta}
}

//within is false for NaN deltas, i.e. when an angle is undefined.
func within(delta, tol float64) bool {
	return math.Abs(delta) <= tol
}

//Compatible returns true if the matches a and b can hold at the same time:
//they use different points on both surfaces, the distance between the two
//receptor points matches the distance between the two ligand points, and so do
//the angle between the normals and the angles between each normal and the line
//joining the points. As the surfaces face each other, corresponding line-normal
//angles add up to Pi.
func Compatible(rec, lig *dock.Surface, a, b dock.PointMatch, P Params) bool {
	if a.Rec == b.Rec || a.Lig == b.Lig {
		return false
	}
	r1, r2 := rec.Point(a.Rec), rec.Point(b.Rec)
	l1, l2 := lig.Point(a.Lig), lig.Point(b.Lig)
	if !within(dock.Distance(r1, r2)-dock.Distance(l1, l2), P.DistanceTolerance) {
		return false
	}
	nr1, nr2 := rec.Normal(a.Rec), rec.Normal(b.Rec)
	nl1, nl2 := lig.Normal(a.Lig), lig.Normal(b.Lig)
	if !within(dock.Angle(nr1, nr2)-dock.Angle(nl1, nl2), P.MaxAngleDelta) {
		return false
	}
	lr := r3.Sub(r1, r2)
	ll := r3.Sub(l1, l2)
	if !within(math.Pi-dock.Angle(nr1, lr)-dock.Angle(nl1, ll), P.MaxAngleDelta) {
		return false
	}
	return within(math.Pi-dock.Angle(nr2, lr)-dock.Angle(nl2, ll), P.MaxAngleDelta)
}

//Graph is the compatibility graph. Its nodes are the matches, identified by
//their position in Matches(), and it is never modified after Build returns it.
type Graph struct {
	matches []dock.PointMatch
	index   map[dock.MatchKey]int
	adj     [][]int
	edges   int
}

//Build returns the compatibility graph over matches. Repeated matches (same
//receptor and ligand points) are kept only once, the first time they appear.
//The pairs are tested by workers goroutines.
func Build(ctx context.Context, rec, lig *dock.Surface, matches []dock.PointMatch, P Params, workers int) (*Graph, error) {
	if err := dock.CheckMatches(rec, lig, matches); err != nil {
		return nil, dock.ErrDecorate(err, "Build")
	}
	G := &Graph{index: make(map[dock.MatchKey]int, len(matches))}
	for _, m := range matches {
		if _, ok := G.index[m.Key()]; ok {
			continue
		}
		G.index[m.Key()] = len(G.matches)
		G.matches = append(G.matches, m)
	}
	n := len(G.matches)
	//upper[i] holds the neighbours j>i of i. Each row is written by one goroutine only.
	upper := make([][]int, n)
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers && w < n; w++ {
		w := w
		g.Go(func() error {
			//rows get shorter as i grows, so they are dealt round-robin.
			for i := w; i < n; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				a := G.matches[i]
				var row []int
				for j := i + 1; j < n; j++ {
					if Compatible(rec, lig, a, G.matches[j], P) {
						row = append(row, j)
					}
				}
				upper[i] = row
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "Build")
	}
	G.adj = make([][]int, n)
	for i, row := range upper {
		for _, j := range row {
			G.adj[j] = append(G.adj[j], i)
		}
		G.edges += len(row)
	}
	//lower neighbours were added in increasing order, and all are smaller than i.
	for i, row := range upper {
		G.adj[i] = append(G.adj[i], row...)
	}
	return G, nil
}

//Len returns the number of nodes.
func (G *Graph) Len() int { return len(G.matches) }

//Edges returns the number of edges.
func (G *Graph) Edges() int { return G.edges }

func (G *Graph) Match(i int) dock.PointMatch { return G.matches[i] }

//Matches returns the nodes of the graph. The slice must not be modified.
func (G *Graph) Matches() []dock.PointMatch { return G.matches }

//Neighbors returns the sorted neighbours of node i. The slice must not be modified.
func (G *Graph) Neighbors(i int) []int { return G.adj[i] }

//Index returns the node of the match with the given key.
func (G *Graph) Index(k dock.MatchKey) (int, bool) {
	i, ok := G.index[k]
	return i, ok
}

//Adjacent returns true if nodes i and j are compatible.
func (G *Graph) Adjacent(i, j int) bool {
	row := G.adj[i]
	k := sort.SearchInts(row, j)
	return k < len(row) && row[k] == j
}

//Compatible returns the matches compatible with m, which must be in the graph.
func (G *Graph) Compatible(m dock.PointMatch) []dock.PointMatch {
	i, ok := G.index[m.Key()]
	if !ok {
		return nil
	}
	ret := make([]dock.PointMatch, len(G.adj[i]))
	for k, j := range G.adj[i] {
		ret[k] = G.matches[j]
	}
	return ret
}

//Undirected returns the graph as a gonum graph, where the ID of each node is its index.
func (G *Graph) Undirected() *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	for i := range G.matches {
		u.AddNode(simple.Node(i))
	}
	for i, row := range G.adj {
		for _, j := range row {
			if j > i {
				u.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	return u
}

//FromEdges returns the graph over matches with the given edges, given as pairs
//of positions in matches. Matches must not repeat. Repeated edges are ignored.
func FromEdges(matches []dock.PointMatch, edges [][2]int) (*Graph, error) {
	n := len(matches)
	G := &Graph{matches: append([]dock.PointMatch(nil), matches...), index: make(map[dock.MatchKey]int, n)}
	for i, m := range matches {
		if _, ok := G.index[m.Key()]; ok {
			return nil, dock.NewError(dock.BadMatches, "repeated match "+m.String(), true, "FromEdges")
		}
		G.index[m.Key()] = i
	}
	sets := make([]map[int]bool, n)
	for i := range sets {
		sets[i] = make(map[int]bool)
	}
	for _, e := range edges {
		i, j := e[0], e[1]
		if i < 0 || j < 0 || i >= n || j >= n || i == j {
			return nil, dock.NewError(dock.BadMatches, fmt.Sprintf("bad edge %v", e), true, "FromEdges")
		}
		sets[i][j] = true
		sets[j][i] = true
	}
	G.adj = make([][]int, n)
	for i, s := range sets {
		for j := range s {
			G.adj[i] = append(G.adj[i], j)
		}
		sort.Ints(G.adj[i])
		G.edges += len(s)
	}
	G.edges /= 2
	return G, nil
}
