/*
 * options.go, part of spindock.
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
	"math"
	"runtime"
)

//Options contains every tunable parameter of a docking run.
//The field tags allow it to be loaded with viper and printed as YAML.
type Options struct {
	//Spin images.
	Radius  float64 `mapstructure:"radius" yaml:"radius"`
	BinSize float64 `mapstructure:"bin_size" yaml:"bin_size"`

	//Number of correlated point pairs kept.
	TopK int `mapstructure:"top_k" yaml:"top_k"`

	//Compatibility graph tolerances, radians and A.
	MaxAngleDelta     float64 `mapstructure:"max_angle_delta" yaml:"max_angle_delta"`
	DistanceTolerance float64 `mapstructure:"distance_tolerance" yaml:"distance_tolerance"`

	MinCliqueSize int `mapstructure:"min_clique_size" yaml:"min_clique_size"`

	//Distance grid. GridWindow is the half-width, in A, of the region around
	//each receptor point that receives its signed distance.
	GridStep   float64 `mapstructure:"grid_step" yaml:"grid_step"`
	GridMargin float64 `mapstructure:"grid_margin" yaml:"grid_margin"`
	GridWindow float64 `mapstructure:"grid_window" yaml:"grid_window"`

	//Depth bucket limits, increasing. A ligand point below the first one
	//disqualifies the pose, points from the first to the last fall in
	//len(PenetrationThresholds)-1 buckets, the shallowest first in
	//PenetrationWeights.
	PenetrationThresholds []float64 `mapstructure:"penetration_thresholds" yaml:"penetration_thresholds"`
	PenetrationWeights    []float64 `mapstructure:"penetration_weights" yaml:"penetration_weights"`
	OverlapFraction       float64   `mapstructure:"overlap_fraction" yaml:"overlap_fraction"`

	//Concurrency. Clique search branches with at least SpawnThreshold candidates
	//run as their own goroutines. A task with SpawnCap children pending
	//waits for DrainCount of them before spawning more.
	Workers        int `mapstructure:"workers" yaml:"workers"`
	SpawnThreshold int `mapstructure:"spawn_threshold" yaml:"spawn_threshold"`
	SpawnCap       int `mapstructure:"spawn_cap" yaml:"spawn_cap"`
	DrainCount     int `mapstructure:"drain_count" yaml:"drain_count"`

	//Number of surfaces whose spin images are kept in the cache.
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
	//Maximum number of poses returned, 0 means all.
	MaxPoses int `mapstructure:"max_poses" yaml:"max_poses"`
}

//DefaultOptions returns the reference parameters, using all the logical CPUs.
func DefaultOptions() *Options {
	r := new(Options)
	r.Radius = 6.0
	r.BinSize = 1.0
	r.TopK = 50000
	r.MaxAngleDelta = math.Pi / 8
	r.DistanceTolerance = 1.0
	r.MinCliqueSize = 3
	r.GridStep = 0.25
	r.GridMargin = 1.5
	r.GridWindow = 12.0
	r.PenetrationThresholds = []float64{-5.0, -3.5, -2.0, -1.0, 1.0}
	r.PenetrationWeights = []float64{1, -1, -2.5, -5}
	r.OverlapFraction = 0.4
	r.Workers = runtime.NumCPU()
	r.SpawnThreshold = 100
	r.SpawnCap = 1000
	r.DrainCount = 800
	r.CacheSize = 16
	return r
}

//Copy returns a deep copy of the options.
func (O *Options) Copy() *Options {
	r := *O
	r.PenetrationThresholds = append([]float64(nil), O.PenetrationThresholds...)
	r.PenetrationWeights = append([]float64(nil), O.PenetrationWeights...)
	return &r
}

//NumWorkers returns the number of goroutines to use, at least 1.
func (O *Options) NumWorkers() int {
	if O.Workers <= 0 {
		return runtime.NumCPU()
	}
	return O.Workers
}

func badOptions(format string, a ...interface{}) error {
	return NewError(BadOptions, fmt.Sprintf(format, a...), true, "Validate")
}

//Validate returns an error if any of the options is out of range.
func (O *Options) Validate() error {
	switch {
	case !(O.Radius > 0):
		return badOptions("radius must be positive, got %g", O.Radius)
	case !(O.BinSize > 0):
		return badOptions("bin size must be positive, got %g", O.BinSize)
	case O.TopK < 0:
		return badOptions("top_k can't be negative, got %d", O.TopK)
	case !(O.MaxAngleDelta >= 0):
		return badOptions("max_angle_delta can't be negative, got %g", O.MaxAngleDelta)
	case !(O.DistanceTolerance >= 0):
		return badOptions("distance_tolerance can't be negative, got %g", O.DistanceTolerance)
	case O.MinCliqueSize < 3:
		return badOptions("min_clique_size must be at least 3, got %d", O.MinCliqueSize)
	case !(O.GridStep > 0):
		return badOptions("grid_step must be positive, got %g", O.GridStep)
	case !(O.GridMargin >= 0):
		return badOptions("grid_margin can't be negative, got %g", O.GridMargin)
	case !(O.GridWindow > 0):
		return badOptions("grid_window must be positive, got %g", O.GridWindow)
	case len(O.PenetrationThresholds) < 2:
		return badOptions("at least 2 penetration thresholds needed, got %d", len(O.PenetrationThresholds))
	case len(O.PenetrationWeights) != len(O.PenetrationThresholds)-1:
		return badOptions("%d penetration weights for %d thresholds", len(O.PenetrationWeights), len(O.PenetrationThresholds))
	case !(O.OverlapFraction >= 0 && O.OverlapFraction <= 1):
		return badOptions("overlap_fraction must be in [0,1], got %g", O.OverlapFraction)
	case O.SpawnThreshold < 1:
		return badOptions("spawn_threshold must be positive, got %d", O.SpawnThreshold)
	case O.SpawnCap < 1 || O.DrainCount < 1 || O.DrainCount > O.SpawnCap:
		return badOptions("need 0 < drain_count <= spawn_cap, got %d and %d", O.DrainCount, O.SpawnCap)
	case O.CacheSize < 1:
		return badOptions("cache_size must be positive, got %d", O.CacheSize)
	case O.MaxPoses < 0:
		return badOptions("max_poses can't be negative, got %d", O.MaxPoses)
	}
	for i := 1; i < len(O.PenetrationThresholds); i++ {
		if !(O.PenetrationThresholds[i] > O.PenetrationThresholds[i-1]) {
			return badOptions("penetration thresholds must increase: %v", O.PenetrationThresholds)
		}
	}
	return nil
}
