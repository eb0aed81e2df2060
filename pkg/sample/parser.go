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

package sample

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape enumerates recognized data line layouts.
type Shape int

const (
	// Raw lines consist of a single `<value>` token.
	Raw Shape = iota
	// Tagged lines consist of `<position> <size><unit> <value>` tokens.
	Tagged
	// Rate lines consist of `<position> <elapsed_us> <ops>` tokens and yield
	// operations per second.
	Rate
)

// NoPosition disables the positional filter.
const NoPosition = -1

func (s Shape) String() string {
	switch s {
	case Raw:
		return "raw"
	case Tagged:
		return "tagged"
	case Rate:
		return "rate"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// tokens returns number of whitespace separated tokens a line of the shape has.
func (s Shape) tokens() int {
	if s == Raw {
		return 1
	}
	return 3
}

// Sample is a single measurement.
type Sample struct {
	Value       float64
	PayloadSize int
	Rank        int
}

// Filter describes which lines are accepted as samples.
type Filter struct {
	Shape Shape
	// SizeTag must match the size token of Tagged lines, e.g. "40B".
	SizeTag string
	// Position selects the only accepted position token. NoPosition accepts all.
	Position int
	// PayloadSize is copied to produced samples.
	PayloadSize int
	// Rank is assigned to samples of shapes which do not carry position.
	Rank int
}

// SizeTag renders payload size the way servers tag their histogram lines.
func SizeTag(payloadSize int) string {
	return fmt.Sprintf("%dB", payloadSize)
}

// NewFilter returns filter for shape at payloadSize without positional filtering.
func NewFilter(shape Shape, payloadSize int) Filter {
	return Filter{
		Shape:       shape,
		SizeTag:     SizeTag(payloadSize),
		Position:    NoPosition,
		PayloadSize: payloadSize,
	}
}

// WithPosition returns copy of the filter accepting only given position.
func (f Filter) WithPosition(position int) Filter {
	f.Position = position
	return f
}

// Parse classifies the line. It returns false when the line is not a data line
// matching the filter.
func Parse(line string, filter Filter) (Sample, bool) {
	fields := strings.Fields(line)
	if len(fields) != filter.Shape.tokens() {
		return Sample{}, false
	}

	if filter.Shape == Raw {
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Sample{}, false
		}
		return Sample{Value: value, PayloadSize: filter.PayloadSize, Rank: filter.Rank}, true
	}

	position, err := strconv.Atoi(fields[0])
	if err != nil {
		return Sample{}, false
	}
	if filter.Position != NoPosition && position != filter.Position {
		return Sample{}, false
	}

	var value float64
	switch filter.Shape {
	case Tagged:
		if fields[1] != filter.SizeTag {
			return Sample{}, false
		}
		value, err = strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Sample{}, false
		}
	case Rate:
		elapsedUs, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || elapsedUs == 0 {
			return Sample{}, false
		}
		ops, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Sample{}, false
		}
		value = ops / (elapsedUs / 1e6)
	default:
		return Sample{}, false
	}

	return Sample{Value: value, PayloadSize: filter.PayloadSize, Rank: position}, true
}

// ParseAll returns samples of all data lines in order of appearance.
func ParseAll(lines []string, filter Filter) []Sample {
	var samples []Sample
	for _, line := range lines {
		if s, ok := Parse(line, filter); ok {
			samples = append(samples, s)
		}
	}
	return samples
}

// Values extracts measured values of samples.
func Values(samples []Sample) []float64 {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		values = append(values, s.Value)
	}
	return values
}

// Select narrows samples to the one at index. Negative index keeps all samples.
// Out of range index gives no samples.
func Select(samples []Sample, index int) []Sample {
	if index < 0 {
		return samples
	}
	if index >= len(samples) {
		return nil
	}
	return samples[index : index+1]
}
