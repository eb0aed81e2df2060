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

// Package accuracy compares results of approximate and exact image searches.
package accuracy

import (
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

var (
	// ErrLengthMismatch is returned when compared windows have different lengths.
	ErrLengthMismatch = errors.New("result windows have different lengths")
	// ErrEmptyWindow is returned when there are no neighbors to compare.
	ErrEmptyWindow = errors.New("result window is empty")
)

// Neighbor is a single search result.
type Neighbor struct {
	ID       string
	Distance float64
}

// RankedResult is an ordered list of neighbors returned by a search.
type RankedResult []Neighbor

// Distances returns distances of neighbors in order.
func (r RankedResult) Distances() []float64 {
	distances := make([]float64, len(r))
	for i, neighbor := range r {
		distances[i] = neighbor.Distance
	}
	return distances
}

// ParseNeighbor parses "<id>:<distance>" line.
func ParseNeighbor(line string) (Neighbor, error) {
	id, distance, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found || id == "" {
		return Neighbor{}, errors.Errorf("%q is not a neighbor line", line)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(distance), 64)
	if err != nil {
		return Neighbor{}, errors.Wrapf(err, "invalid distance in %q", line)
	}
	return Neighbor{ID: id, Distance: value}, nil
}

// Window returns the last k neighbors printed in output. Lines which are not
// neighbors, like timing summaries, are skipped.
func Window(output []string, k int) RankedResult {
	var window RankedResult
	for i := len(output) - 1; i >= 0 && len(window) < k; i-- {
		neighbor, err := ParseNeighbor(output[i])
		if err != nil {
			continue
		}
		window = append(window, neighbor)
	}
	// Restore output order.
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window
}

// Comparison of approximate and exact result windows of the same query.
type Comparison struct {
	// Ratio of approximate neighbors within the distance of the last exact neighbor.
	Ratio           float64
	ApproximateMean float64
	ExactMean       float64
}

// Compare compares windows of equal length. The distance of the last exact
// neighbor is the threshold approximate neighbors qualify against.
func Compare(approximate, exact RankedResult) (Comparison, error) {
	if len(approximate) != len(exact) {
		return Comparison{}, errors.Wrapf(ErrLengthMismatch, "%d approximate and %d exact neighbors", len(approximate), len(exact))
	}
	if len(exact) == 0 {
		return Comparison{}, ErrEmptyWindow
	}

	threshold := exact[len(exact)-1].Distance
	qualified := 0
	for _, neighbor := range approximate {
		if neighbor.Distance <= threshold {
			qualified++
		}
	}

	approximateMean, err := stats.Mean(approximate.Distances())
	if err != nil {
		return Comparison{}, errors.Wrap(err, "cannot compute approximate mean distance")
	}
	exactMean, err := stats.Mean(exact.Distances())
	if err != nil {
		return Comparison{}, errors.Wrap(err, "cannot compute exact mean distance")
	}

	return Comparison{
		Ratio:           float64(qualified) / float64(len(exact)),
		ApproximateMean: approximateMean,
		ExactMean:       exactMean,
	}, nil
}
