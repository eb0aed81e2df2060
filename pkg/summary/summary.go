// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package summary reduces measurement samples to descriptive statistics.
package summary

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// ErrEmptySampleSet is returned when there is nothing to reduce.
var ErrEmptySampleSet = errors.New("empty sample set")

// Summary holds descriptive statistics of a non-empty sample set.
type Summary struct {
	Min    float64
	Avg    float64
	StdDev float64
	Max    float64
	Count  int
}

// Reduce computes min, mean, population standard deviation and max of values.
func Reduce(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptySampleSet
	}

	data := stats.Float64Data(values)
	min, err := data.Min()
	if err != nil {
		return Summary{}, errors.Wrap(err, "cannot compute minimum")
	}
	max, err := data.Max()
	if err != nil {
		return Summary{}, errors.Wrap(err, "cannot compute maximum")
	}
	// Summing deviations from a rounded mean leaves noise for constant input.
	if min == max {
		return Summary{Min: min, Avg: min, StdDev: 0, Max: max, Count: len(values)}, nil
	}
	avg, err := data.Mean()
	if err != nil {
		return Summary{}, errors.Wrap(err, "cannot compute mean")
	}
	stdDev, err := data.StandardDeviationPopulation()
	if err != nil {
		return Summary{}, errors.Wrap(err, "cannot compute standard deviation")
	}

	// Rounding of the mean can leave it a hair outside of [min, max].
	if avg < min {
		avg = min
	}
	if avg > max {
		avg = max
	}

	return Summary{Min: min, Avg: avg, StdDev: stdDev, Max: max, Count: len(values)}, nil
}

// Row returns statistics in rendering order: min, avg, stddev, max.
func (s Summary) Row() []float64 {
	return []float64{s.Min, s.Avg, s.StdDev, s.Max}
}
