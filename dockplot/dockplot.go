/*
 * dockplot.go, part of spindock.
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

//Package dockplot draws diagnostic plots of a docking run: the distribution
//of pose scores, scores against rank, and the distribution of the
//correlations of the selected point pairs.
package dockplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/engine"
)

//ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("dockplot: no data to plot")

//Size of the saved plots.
var (
	Width  = 5 * vg.Inch
	Height = 4 * vg.Inch
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func histogram(values []float64, bins int, title, xlabel string) (*plot.Plot, *plotter.Histogram, error) {
	if len(values) == 0 {
		return nil, nil, ErrNoData
	}
	if bins < 1 {
		bins = 1
	}
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, nil, err
	}
	h.FillColor = color.RGBA{R: 70, G: 110, B: 200, A: 255}
	p := basicPlot(title, xlabel, "Count")
	p.Add(h)
	return p, h, nil
}

func scores(res *engine.Result) []float64 {
	ret := make([]float64, len(res.Poses))
	for i, p := range res.Poses {
		ret[i] = p.Score
	}
	return ret
}

//ScoreHistogram plots the distribution of the pose scores of res in the
//given number of bins.
func ScoreHistogram(res *engine.Result, bins int) (*plot.Plot, error) {
	p, _, err := histogram(scores(res), bins, fmt.Sprintf("%s on %s (%s)", res.Ligand, res.Receptor, res.Variant), "Score")
	return p, err
}

//CorrelationHistogram plots the distribution of the scores of the selected
//point pairs.
func CorrelationHistogram(pairs []dock.PointMatch, bins int) (*plot.Plot, error) {
	v := make([]float64, len(pairs))
	for i, m := range pairs {
		v[i] = m.Score
	}
	p, _, err := histogram(v, bins, "Selected pairs", "Correlation")
	return p, err
}

//RankPlot plots the score of each pose of res against its rank.
func RankPlot(res *engine.Result) (*plot.Plot, error) {
	s := scores(res)
	if len(s) == 0 {
		return nil, ErrNoData
	}
	pts := make(plotter.XYs, len(s))
	for i, v := range s {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	p := basicPlot(fmt.Sprintf("%s on %s (%s)", res.Ligand, res.Receptor, res.Variant), "Rank", "Score")
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	p.Add(l, sc)
	p.X.Min = 0
	return p, nil
}

//Save writes p to fname. The format is taken from the extension
//(png, svg, pdf, eps, jpg or tif).
func Save(p *plot.Plot, fname string) error {
	return p.Save(Width, Height, fname)
}

//Write writes p to out in the given format (png, svg, pdf, eps, jpg or tif).
func Write(p *plot.Plot, out io.Writer, format string) error {
	w, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(out)
	return err
}
