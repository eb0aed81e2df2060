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

package workloads

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TestKind selects what a benchmark run measures.
type TestKind int

const (
	// Throughput measures operations per second.
	Throughput TestKind = iota
	// Latency records per-request latencies.
	Latency
	// Put measures insert throughput of the DHT.
	Put
	// Get measures lookup throughput of the DHT.
	Get
)

// Style groups test kinds by the way they are measured.
type Style int

const (
	// ThroughputStyle runs are sampled incrementally and reduced to a summary row.
	ThroughputStyle Style = iota
	// LatencyStyle runs wait for the server to finish and report every sample.
	LatencyStyle
)

// ParseTestKind returns the test kind for its name or code.
func ParseTestKind(name string) (TestKind, error) {
	switch strings.TrimSpace(name) {
	case "throughput", "thru", "THRU":
		return Throughput, nil
	case "latency", "lat", "LAT":
		return Latency, nil
	case "put", "p":
		return Put, nil
	case "get", "g":
		return Get, nil
	}
	return 0, errors.Errorf("unknown test kind %q (expected throughput, latency, put or get)", name)
}

// ParseTestKinds parses a list of test kind names.
func ParseTestKinds(names []string) ([]TestKind, error) {
	kinds := make([]TestKind, 0, len(names))
	for _, name := range names {
		kind, err := ParseTestKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func (k TestKind) String() string {
	switch k {
	case Throughput:
		return "throughput"
	case Latency:
		return "latency"
	case Put:
		return "put"
	case Get:
		return "get"
	}
	return fmt.Sprintf("TestKind(%d)", int(k))
}

// Code returns test identifier understood by the benchmark binaries.
func (k TestKind) Code() string {
	switch k {
	case Throughput:
		return "THRU"
	case Latency:
		return "LAT"
	case Put:
		return "p"
	case Get:
		return "g"
	}
	panic(fmt.Sprintf("code requested for unknown %s", k))
}

// Style returns how runs of the kind are measured.
func (k TestKind) Style() Style {
	switch k {
	case Throughput, Put, Get:
		return ThroughputStyle
	case Latency:
		return LatencyStyle
	}
	panic(fmt.Sprintf("style requested for unknown %s", k))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *TestKind) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	kind, err := ParseTestKind(name)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k TestKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}
