/*
 * engine.go, part of spindock.
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

//Package engine runs the docking pipeline: spin images, correlated pairs,
//compatibility graph, clique search, superposition and penetration scoring.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/graph/topo"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/align"
	"github.com/rmera/spindock/clash"
	"github.com/rmera/spindock/clique"
	"github.com/rmera/spindock/compat"
	"github.com/rmera/spindock/histo"
	"github.com/rmera/spindock/match"
	"github.com/rmera/spindock/spin"
)

//Engine docks pairs of surfaces. It owns a spin image cache shared by all
//its runs, so docking several ligands on the same receptor computes the
//receptor descriptors only once. An Engine can be used from several goroutines.
type Engine struct {
	o       *dock.Options
	log     *zap.Logger
	cache   *spin.Cache
	metrics *Metrics
}

//Option configures an Engine.
type Option func(*Engine)

//WithLogger sets the logger of the engine. The default logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(E *Engine) {
		if l != nil {
			E.log = l
		}
	}
}

//WithCache makes the engine use C instead of a cache of its own.
func WithCache(C *spin.Cache) Option {
	return func(E *Engine) { E.cache = C }
}

//WithMetrics makes the engine update m.
func WithMetrics(m *Metrics) Option {
	return func(E *Engine) { E.metrics = m }
}

//New returns an Engine with a copy of O, or the default options if O is nil.
func New(O *dock.Options, opts ...Option) (*Engine, error) {
	if O == nil {
		O = dock.DefaultOptions()
	}
	if err := O.Validate(); err != nil {
		return nil, dock.ErrDecorate(err, "engine.New")
	}
	E := &Engine{o: O.Copy(), log: zap.NewNop()}
	for _, f := range opts {
		f(E)
	}
	if E.cache == nil {
		C, err := spin.NewCache(E.o.CacheSize)
		if err != nil {
			return nil, dock.ErrDecorate(err, "engine.New")
		}
		E.cache = C
	}
	return E, nil
}

//Options returns a copy of the options of the engine.
func (E *Engine) Options() *dock.Options { return E.o.Copy() }

func (E *Engine) Cache() *spin.Cache { return E.cache }

//ScoredPose is a candidate placement of the ligand: the clique it comes from,
//the transformation that moves the ligand onto the receptor, its score, and
//the depths of the moved ligand points in the penetration buckets.
type ScoredPose struct {
	Clique    dock.Clique
	Transform align.Transform
	Score     float64
	Depths    *histo.Data
}

//Result is the outcome of a docking run.
type Result struct {
	RunID    uuid.UUID
	Variant  Variant
	Receptor string
	Ligand   string
	//Pairs and Edges are summed over the searches of the run.
	Pairs   int
	Edges   int
	Cliques int
	//Poses are sorted by decreasing score. Disqualified poses are not included.
	Poses []ScoredPose
	//Depths adds up the depth histograms of the poses. It is nil if there are no poses.
	Depths  *histo.Data
	Elapsed time.Duration
}

//Transforms returns the transformations of the poses, best first.
func (R *Result) Transforms() []align.Transform {
	ret := make([]align.Transform, len(R.Poses))
	for i, p := range R.Poses {
		ret[i] = p.Transform
	}
	return ret
}

//sumDepths returns the sum of the depth histograms of P, or nil if P is empty.
func sumDepths(P []ScoredPose, thresholds []float64) *histo.Data {
	if len(P) == 0 {
		return nil
	}
	ret := histo.NewData(thresholds, nil)
	for _, p := range P {
		if p.Depths != nil {
			ret.Add(ret, p.Depths)
		}
	}
	return ret
}

//sortPoses sorts by decreasing score, then by clique.
func sortPoses(P []ScoredPose) {
	sort.SliceStable(P, func(i, j int) bool {
		if P[i].Score != P[j].Score {
			return P[i].Score > P[j].Score
		}
		return P[i].Clique.Less(P[j].Clique)
	})
}

func checkSurfaces(rec, lig *dock.Surface) error {
	if rec == nil || lig == nil {
		return dock.NewError(dock.BadSurface, "nil surface", true, "Dock")
	}
	if err := rec.Validate(); err != nil {
		return dock.ErrDecorate(err, "Dock")
	}
	if err := lig.Validate(); err != nil {
		return dock.ErrDecorate(err, "Dock")
	}
	return nil
}

//Dock finds the placements of lig on rec. Ill-formed surfaces are an error,
//while surfaces with fewer than 3 points, a TopK of 0, or a search where
//every pose is disqualified give a result with no poses.
func (E *Engine) Dock(ctx context.Context, rec, lig *dock.Surface, v Variant) (res *Result, err error) {
	start := time.Now()
	defer func() { E.metrics.run(v, err) }()
	if err := checkSurfaces(rec, lig); err != nil {
		return nil, err
	}
	res = &Result{RunID: uuid.New(), Variant: v, Receptor: rec.Name(), Ligand: lig.Name()}
	log := E.log.With(zap.String("run", res.RunID.String()), zap.Stringer("variant", v),
		zap.String("receptor", rec.Name()), zap.String("ligand", lig.Name()))
	S, err := searches(rec, lig, v, log)
	if err != nil {
		return nil, err
	}
	if rec.Len() < 3 || lig.Len() < 3 || E.o.TopK == 0 {
		log.Info("nothing to search", zap.Int("receptor_points", rec.Len()), zap.Int("ligand_points", lig.Len()), zap.Int("top_k", E.o.TopK))
		res.Elapsed = time.Since(start)
		return res, nil
	}
	var grid *clash.Grid
	var cliques []dock.Clique
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		grid, err = E.grid(gctx, rec, log)
		return err
	})
	g.Go(func() error {
		var err error
		cliques, err = E.search(gctx, rec, lig, S, res, log)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "Dock")
	}
	scorer, err := clash.ScorerFrom(grid, E.o)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Dock")
	}
	res.Poses, err = E.score(ctx, scorer, rec, lig, cliques, log)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Dock")
	}
	res.Depths = sumDepths(res.Poses, E.o.PenetrationThresholds)
	res.Elapsed = time.Since(start)
	E.metrics.set("poses", len(res.Poses))
	fields := []zap.Field{zap.Int("poses", len(res.Poses)), zap.Duration("elapsed", res.Elapsed)}
	if len(res.Poses) > 0 {
		fields = append(fields, zap.Float64("best", res.Poses[0].Score))
	}
	log.Info("docking finished", fields...)
	return res, nil
}

//Rescore scores the ligand moved by each of the given transformations, and
//returns the poses that are not disqualified, best first. Poses with the same
//score keep their relative order.
func (E *Engine) Rescore(ctx context.Context, rec, lig *dock.Surface, transforms []align.Transform) ([]ScoredPose, error) {
	if err := checkSurfaces(rec, lig); err != nil {
		return nil, err
	}
	grid, err := E.grid(ctx, rec, E.log)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Rescore")
	}
	scorer, err := clash.ScorerFrom(grid, E.o)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Rescore")
	}
	scores := make([]float64, len(transforms))
	depths := make([]*histo.Data, len(transforms))
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range dock.Chunks(len(transforms), E.o.NumWorkers()) {
		c := c
		g.Go(func() error {
			for i := c[0]; i < c[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				scores[i], depths[i] = scorer.WeighPose(transforms[i], lig)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "Rescore")
	}
	ret := make([]ScoredPose, 0, len(transforms))
	for i, T := range transforms {
		if !clash.Disqualified(scores[i]) {
			ret = append(ret, ScoredPose{Transform: T, Score: scores[i], Depths: depths[i]})
		}
	}
	sortPoses(ret)
	return ret, nil
}

//Pairs returns the correlated pairs that the searches of variant v would
//select, best first within each search. For Combined, the pairs of every
//search are concatenated in search order.
func (E *Engine) Pairs(ctx context.Context, rec, lig *dock.Surface, v Variant) ([]dock.PointMatch, error) {
	if err := checkSurfaces(rec, lig); err != nil {
		return nil, err
	}
	S, err := searches(rec, lig, v, E.log)
	if err != nil {
		return nil, err
	}
	rs, ls, err := E.stacks(ctx, rec, lig, E.log)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Pairs")
	}
	var ret []dock.PointMatch
	for _, s := range S {
		m, err := match.TopK(ctx, rs, ls, E.o.TopK, s.bonus, E.o.NumWorkers())
		if err != nil {
			return nil, dock.ErrDecorate(err, "Pairs")
		}
		ret = append(ret, m...)
	}
	return ret, nil
}

func (E *Engine) grid(ctx context.Context, rec *dock.Surface, log *zap.Logger) (*clash.Grid, error) {
	t := time.Now()
	G, err := clash.NewGrid(ctx, rec, E.o.GridStep, E.o.GridMargin, E.o.GridWindow, E.o.NumWorkers())
	if err != nil {
		return nil, err
	}
	E.metrics.observe(PhaseGrid, t)
	nx, ny, nz := G.Dims()
	log.Info("distance grid built", zap.Int("cells", nx*ny*nz), zap.Duration("elapsed", time.Since(t)))
	return G, nil
}

//stacks returns the spin images of both surfaces, computed concurrently.
func (E *Engine) stacks(ctx context.Context, rec, lig *dock.Surface, log *zap.Logger) (rs, ls spin.Stack, err error) {
	t := time.Now()
	surfaces := []*dock.Surface{rec, lig}
	stacks := make([]spin.Stack, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i, S := range surfaces {
		i, S := i, S
		g.Go(func() error {
			st, hit, err := E.cache.Stack(gctx, S, E.o.Radius, E.o.BinSize, E.o.NumWorkers())
			if err != nil {
				return err
			}
			E.metrics.cached(hit)
			log.Debug("spin images", zap.String("surface", S.Name()), zap.Int("images", len(st)), zap.Bool("cached", hit))
			stacks[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	E.metrics.observe(PhaseDescriptors, t)
	log.Info("spin images ready", zap.Duration("elapsed", time.Since(t)))
	return stacks[0], stacks[1], nil
}

//search runs the pair searches concurrently and returns the union
//of their cliques, sorted. It adds the pair and edge counts to res.
func (E *Engine) search(ctx context.Context, rec, lig *dock.Surface, S []search, res *Result, log *zap.Logger) ([]dock.Clique, error) {
	rs, ls, err := E.stacks(ctx, rec, lig, log)
	if err != nil {
		return nil, err
	}
	found := make([][]dock.Clique, len(S))
	pairs := make([]int, len(S))
	edges := make([]int, len(S))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range S {
		i, s := i, s
		g.Go(func() error {
			var err error
			found[i], pairs[i], edges[i], err = E.cliques(gctx, rec, lig, rs, ls, s, log.With(zap.String("search", s.name)))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ret []dock.Clique
	for i, cl := range found {
		res.Pairs += pairs[i]
		res.Edges += edges[i]
		for _, c := range cl {
			k := c.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			ret = append(ret, c)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	res.Cliques = len(ret)
	E.metrics.set("pairs", res.Pairs)
	E.metrics.set("edges", res.Edges)
	E.metrics.set("cliques", res.Cliques)
	return ret, nil
}

//cliques runs one pair search, builds its graph and enumerates the cliques.
func (E *Engine) cliques(ctx context.Context, rec, lig *dock.Surface, rs, ls spin.Stack, s search, log *zap.Logger) (found []dock.Clique, pairs, edges int, err error) {
	workers := E.o.NumWorkers()
	t := time.Now()
	matches, err := match.TopK(ctx, rs, ls, E.o.TopK, s.bonus, workers)
	if err != nil {
		return nil, 0, 0, err
	}
	E.metrics.observe(PhasePairs, t)
	if len(matches) == 0 {
		return nil, 0, 0, nil
	}
	log.Info("pairs selected", zap.Int("pairs", len(matches)), zap.Float64("best", matches[0].Score),
		zap.Float64("smallest", matches[len(matches)-1].Score), zap.Duration("elapsed", time.Since(t)))

	t = time.Now()
	G, err := compat.Build(ctx, rec, lig, matches, compat.ParamsFrom(E.o), workers)
	if err != nil {
		return nil, 0, 0, err
	}
	E.metrics.observe(PhaseGraph, t)
	log.Info("graph built", zap.Int("nodes", G.Len()), zap.Int("edges", G.Edges()), zap.Duration("elapsed", time.Since(t)))
	if ce := log.Check(zap.DebugLevel, "graph components"); ce != nil {
		ce.Write(zap.Int("components", len(topo.ConnectedComponents(G.Undirected()))))
	}

	t = time.Now()
	found, err = clique.Enumerate(ctx, G, clique.NormalsGate(rec, lig), clique.ParamsFrom(E.o))
	if err != nil {
		return nil, 0, 0, err
	}
	E.metrics.observe(PhaseCliques, t)
	log.Info("cliques found", zap.Int("cliques", len(found)), zap.Duration("elapsed", time.Since(t)))
	return found, len(matches), G.Edges(), nil
}

//score superimposes each clique and scores the resulting pose. Cliques whose
//superposition is degenerate, and disqualified poses, are dropped.
func (E *Engine) score(ctx context.Context, scorer *clash.Scorer, rec, lig *dock.Surface, cliques []dock.Clique, log *zap.Logger) ([]ScoredPose, error) {
	t := time.Now()
	poses := make([]ScoredPose, len(cliques))
	keep := make([]bool, len(cliques))
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range dock.Chunks(len(cliques), E.o.NumWorkers()) {
		c := c
		g.Go(func() error {
			for i := c[0]; i < c[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, l := align.Matches(rec, lig, cliques[i])
				T, err := align.Super(l, r)
				if dock.IsDegenerateFit(err) {
					log.Debug("degenerate clique", zap.String("clique", cliques[i].Key()))
					continue
				}
				if err != nil {
					return err
				}
				s, h := scorer.WeighPose(T, lig)
				if clash.Disqualified(s) {
					continue
				}
				poses[i] = ScoredPose{Clique: cliques[i], Transform: T, Score: s, Depths: h}
				keep[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ret := make([]ScoredPose, 0, len(poses))
	for i, p := range poses {
		if keep[i] {
			ret = append(ret, p)
		}
	}
	sortPoses(ret)
	log.Info("poses scored", zap.Int("cliques", len(cliques)), zap.Int("poses", len(ret)), zap.Duration("elapsed", time.Since(t)))
	E.metrics.observe(PhaseScoring, t)
	if E.o.MaxPoses > 0 && len(ret) > E.o.MaxPoses {
		ret = ret[:E.o.MaxPoses]
	}
	return ret, nil
}
