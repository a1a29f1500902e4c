/*
 * score.go, part of spindock.
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

package clash

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/histo"
)

//Scorer rates ligand poses against the distance field of a receptor.
//The depths of the ligand points are counted in buckets delimited by the
//thresholds. A point deeper than the first threshold, or more than the
//overlap fraction of the points in the buckets, disqualifies the pose.
//Otherwise the score is the weighted sum of the bucket counts.
//A Scorer can be used from several goroutines.
type Scorer struct {
	field      Field
	thresholds []float64
	weights    []float64 //shallowest bucket first
	overlap    float64
}

//NewScorer returns a Scorer over field. thresholds must increase, and there
//must be one weight per bucket, the shallowest bucket first.
func NewScorer(field Field, thresholds, weights []float64, overlap float64) (*Scorer, error) {
	if len(thresholds) < 2 || len(weights) != len(thresholds)-1 {
		return nil, dock.NewError(dock.BadOptions, fmt.Sprintf("%d weights for %d thresholds", len(weights), len(thresholds)), true, "NewScorer")
	}
	for i := 1; i < len(thresholds); i++ {
		if !(thresholds[i] > thresholds[i-1]) {
			return nil, dock.NewError(dock.BadOptions, fmt.Sprintf("thresholds must increase: %v", thresholds), true, "NewScorer")
		}
	}
	if !(overlap >= 0 && overlap <= 1) {
		return nil, dock.NewError(dock.BadOptions, fmt.Sprintf("overlap fraction %g", overlap), true, "NewScorer")
	}
	return &Scorer{
		field:      field,
		thresholds: append([]float64(nil), thresholds...),
		weights:    append([]float64(nil), weights...),
		overlap:    overlap,
	}, nil
}

//ScorerFrom returns a Scorer over field with the penetration parameters of O.
func ScorerFrom(field Field, O *dock.Options) (*Scorer, error) {
	return NewScorer(field, O.PenetrationThresholds, O.PenetrationWeights, O.OverlapFraction)
}

//Histogram returns the depths of points counted in the buckets, and false
//if some point is deeper than the first threshold. The bins go from the
//deepest to the shallowest.
func (S *Scorer) Histogram(points []r3.Vec) (*histo.Data, bool) {
	depths := make([]float64, 0, len(points))
	for _, p := range points {
		d := S.field.Distance(p)
		if d < S.thresholds[0] {
			return nil, false
		}
		depths = append(depths, d)
	}
	return histo.NewData(S.thresholds, depths), true
}

//Weigh returns the score of the ligand points, or -Inf if they are
//disqualified, together with the histogram of their depths. The histogram is
//nil if the points are disqualified. Points outside the field do not count.
func (S *Scorer) Weigh(points []r3.Vec) (float64, *histo.Data) {
	h, ok := S.Histogram(points)
	if !ok {
		return math.Inf(-1), nil
	}
	if float64(h.Total()) > S.overlap*float64(len(points)) {
		return math.Inf(-1), nil
	}
	last := len(S.weights) - 1
	var score float64
	for i, v := range h.View() {
		score += S.weights[last-i] * v
	}
	return score, h
}

//WeighPose is Weigh on the ligand moved by T.
func (S *Scorer) WeighPose(T dock.Transformer, lig *dock.Surface) (float64, *histo.Data) {
	moved := make([]r3.Vec, lig.Len())
	for i, p := range lig.Points() {
		moved[i] = T.Apply(p)
	}
	return S.Weigh(moved)
}

//Disqualified returns true if score is the mark of a rejected pose.
func Disqualified(score float64) bool {
	return math.IsInf(score, -1) || math.IsNaN(score)
}
