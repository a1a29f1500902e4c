/*
 * dockplot_test.go, part of spindock.
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

package dockplot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/engine"
)

func result() *engine.Result {
	res := &engine.Result{Receptor: "rec", Ligand: "lig", Variant: engine.Lipophilic}
	for i := 0; i < 40; i++ {
		res.Poses = append(res.Poses, engine.ScoredPose{Score: float64(60 - i)})
	}
	return res
}

func TestHistogram(Te *testing.T) {
	values := []float64{0.1, 0.2, 0.25, 0.5, 0.9, 0.95, 1}
	p, h, err := histogram(values, 3, "t", "x")
	require.NoError(Te, err)
	require.Len(Te, h.Bins, 3)
	var total float64
	for _, b := range h.Bins {
		total += b.Weight
	}
	assert.Equal(Te, float64(len(values)), total)
	assert.Equal(Te, "t", p.Title.Text)
	assert.Equal(Te, 3*vg.Millimeter, p.Title.Padding)
	assert.Equal(Te, "x", p.X.Label.Text)
	_, _, err = histogram(nil, 3, "t", "x")
	assert.ErrorIs(Te, err, ErrNoData)
}

func TestPlots(Te *testing.T) {
	res := result()
	p, err := ScoreHistogram(res, 8)
	require.NoError(Te, err)
	assert.Equal(Te, "lig on rec (lipophilic)", p.Title.Text)
	var b bytes.Buffer
	require.NoError(Te, Write(p, &b, "svg"))
	assert.Contains(Te, b.String(), "<svg")

	p, err = RankPlot(res)
	require.NoError(Te, err)
	b.Reset()
	require.NoError(Te, Write(p, &b, "png"))
	assert.Equal(Te, []byte("\x89PNG"), b.Bytes()[:4])
	assert.Error(Te, Write(p, &b, "doc"))

	pairs := []dock.PointMatch{{Rec: 0, Lig: 1, Score: 0.9}, {Rec: 1, Lig: 1, Score: 0.4}, {Rec: 2, Lig: 0, Score: -0.3}}
	p, err = CorrelationHistogram(pairs, 0)
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), "pairs.png")
	require.NoError(Te, Save(p, name))
	st, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, st.Size(), int64(0))

	empty := &engine.Result{}
	_, err = ScoreHistogram(empty, 10)
	assert.ErrorIs(Te, err, ErrNoData)
	_, err = RankPlot(empty)
	assert.ErrorIs(Te, err, ErrNoData)
	_, err = CorrelationHistogram(nil, 10)
	assert.ErrorIs(Te, err, ErrNoData)
}
