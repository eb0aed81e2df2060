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

package experiment

import (
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/workloads"
	"gopkg.in/yaml.v3"
)

var (
	targetsFlag      = conf.NewSliceFlag("targets", "Benchmarked target systems: pilaf, pilaf-ib or echo", "pilaf")
	testKindsFlag    = conf.NewSliceFlag("test_kinds", "Test kinds run for every target: throughput, latency, put or get", "put", "get")
	payloadSizesFlag = conf.NewSliceFlag("payload_sizes", "Payload sizes in bytes; K and M units are accepted", "64", "128", "256", "512", "1024")
	sweepFileFlag    = conf.NewStringFlag("sweep_file", "YAML file with targets, test_kinds and payload_sizes overriding the flags", "")
)

// SweepPoint is a single run of the sweep.
type SweepPoint struct {
	Target      workloads.TargetSystem
	Kind        workloads.TestKind
	PayloadSize int
}

func (p SweepPoint) String() string {
	return fmt.Sprintf("%s/%s/%dB", p.Target, p.Kind, p.PayloadSize)
}

// Config is an explicit sweep definition.
type Config struct {
	Targets      []workloads.TargetSystem
	Kinds        []workloads.TestKind
	PayloadSizes []int
}

// sweepFile is the on-disk form of Config. Sizes are kept as text to accept units.
type sweepFile struct {
	Targets      []workloads.TargetSystem `yaml:"targets"`
	Kinds        []workloads.TestKind     `yaml:"test_kinds"`
	PayloadSizes []string                 `yaml:"payload_sizes"`
}

// ParsePayloadSizes converts sizes given in bytes or with byte units (4K, 1M) to bytes.
func ParsePayloadSizes(values []string) ([]int, error) {
	sizes := make([]int, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)

		var size uint64
		var err error
		if n, convErr := strconv.ParseUint(value, 10, 64); convErr == nil {
			size = n
		} else {
			size, err = bytefmt.ToBytes(value)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "invalid payload size %q", value)
		}
		if size == 0 {
			return nil, errors.Errorf("payload size %q must be positive", value)
		}
		sizes = append(sizes, int(size))
	}
	return sizes, nil
}

// ConfigFromFlags builds sweep from flags. Fields set in sweep_file override them.
func ConfigFromFlags() (Config, error) {
	targets, err := workloads.ParseTargetSystems(targetsFlag.Value())
	if err != nil {
		return Config{}, err
	}
	kinds, err := workloads.ParseTestKinds(testKindsFlag.Value())
	if err != nil {
		return Config{}, err
	}
	sizes, err := ParsePayloadSizes(payloadSizesFlag.Value())
	if err != nil {
		return Config{}, err
	}
	config := Config{Targets: targets, Kinds: kinds, PayloadSizes: sizes}

	if sweepFileFlag.Value() != "" {
		config, err = LoadConfigFile(sweepFileFlag.Value(), config)
		if err != nil {
			return Config{}, err
		}
	}
	return config, config.check()
}

// LoadConfigFile overlays sweep definition from YAML file on base.
func LoadConfigFile(path string, base Config) (Config, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read sweep file %q", path)
	}
	return overlay(content, base)
}

func overlay(content []byte, base Config) (Config, error) {
	file := sweepFile{}
	if err := yaml.Unmarshal(content, &file); err != nil {
		return Config{}, errors.Wrap(err, "cannot parse sweep file")
	}

	config := base
	if len(file.Targets) > 0 {
		config.Targets = file.Targets
	}
	if len(file.Kinds) > 0 {
		config.Kinds = file.Kinds
	}
	if len(file.PayloadSizes) > 0 {
		sizes, err := ParsePayloadSizes(file.PayloadSizes)
		if err != nil {
			return Config{}, err
		}
		config.PayloadSizes = sizes
	}
	return config, nil
}

func (c Config) check() error {
	if len(c.Targets) == 0 || len(c.Kinds) == 0 || len(c.PayloadSizes) == 0 {
		return errors.Errorf("sweep is empty: %d targets, %d test kinds, %d payload sizes", len(c.Targets), len(c.Kinds), len(c.PayloadSizes))
	}
	return nil
}

// Points returns the sweep in run order: target, then test kind, then payload size.
func (c Config) Points() []SweepPoint {
	points := make([]SweepPoint, 0, len(c.Targets)*len(c.Kinds)*len(c.PayloadSizes))
	for _, target := range c.Targets {
		for _, kind := range c.Kinds {
			for _, size := range c.PayloadSizes {
				points = append(points, SweepPoint{Target: target, Kind: kind, PayloadSize: size})
			}
		}
	}
	return points
}

// Validate checks that every target runs at least one test kind and every test kind
// is run by at least one target. Other unsupported points are skipped by the orchestrator.
func (c Config) Validate(supports func(SweepPoint) bool) error {
	if err := c.check(); err != nil {
		return err
	}
	usedKinds := map[workloads.TestKind]bool{}
	for _, target := range c.Targets {
		used := false
		for _, kind := range c.Kinds {
			if supports(SweepPoint{Target: target, Kind: kind, PayloadSize: c.PayloadSizes[0]}) {
				used = true
				usedKinds[kind] = true
			}
		}
		if !used {
			return errors.Errorf("%s does not support any of test kinds %v", target, c.Kinds)
		}
	}
	for _, kind := range c.Kinds {
		if !usedKinds[kind] {
			return errors.Errorf("no target supports %s test", kind)
		}
	}
	return nil
}
