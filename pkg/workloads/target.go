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

// TargetSystem is the benchmarked system.
type TargetSystem int

const (
	// Pilaf is the RDMA backed DHT (dht-test).
	Pilaf TargetSystem = iota
	// PilafIB is the raw verbs test of the Pilaf transport (ib-test).
	PilafIB
	// Echo is the TCP echo server (multi) with its clients.
	Echo
	// Memcached is used as a storage backend of the distributed search only.
	Memcached
)

var targetNames = map[TargetSystem]string{
	Pilaf:     "pilaf",
	PilafIB:   "pilaf-ib",
	Echo:      "echo",
	Memcached: "memcached",
}

// ParseTargetSystem returns the target system for its name.
func ParseTargetSystem(name string) (TargetSystem, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for target, targetName := range targetNames {
		if targetName == name {
			return target, nil
		}
	}
	return 0, errors.Errorf("unknown target system %q (expected pilaf, pilaf-ib, echo or memcached)", name)
}

// ParseTargetSystems parses a list of target system names.
func ParseTargetSystems(names []string) ([]TargetSystem, error) {
	targets := make([]TargetSystem, 0, len(names))
	for _, name := range names {
		target, err := ParseTargetSystem(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (t TargetSystem) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TargetSystem(%d)", int(t))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TargetSystem) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	target, err := ParseTargetSystem(name)
	if err != nil {
		return err
	}
	*t = target
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t TargetSystem) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
