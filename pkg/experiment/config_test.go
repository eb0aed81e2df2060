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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

func TestParsePayloadSizes(t *testing.T) {
	sizes, err := ParsePayloadSizes([]string{"64", " 128", "4K", "1M", "2KB"})
	require.NoError(t, err)
	assert.Equal(t, []int{64, 128, 4096, 1048576, 2048}, sizes)

	for _, invalid := range []string{"0", "-1", "abc", "4X", ""} {
		_, err := ParsePayloadSizes([]string{invalid})
		assert.Error(t, err, invalid)
	}
}

func TestConfigPointsOrder(t *testing.T) {
	config := Config{
		Targets:      []workloads.TargetSystem{workloads.Pilaf, workloads.Echo},
		Kinds:        []workloads.TestKind{workloads.Put, workloads.Get},
		PayloadSizes: []int{64, 128},
	}

	points := config.Points()
	require.Len(t, points, 8)
	assert.Equal(t, SweepPoint{Target: workloads.Pilaf, Kind: workloads.Put, PayloadSize: 64}, points[0])
	assert.Equal(t, SweepPoint{Target: workloads.Pilaf, Kind: workloads.Put, PayloadSize: 128}, points[1])
	assert.Equal(t, SweepPoint{Target: workloads.Pilaf, Kind: workloads.Get, PayloadSize: 64}, points[2])
	assert.Equal(t, SweepPoint{Target: workloads.Echo, Kind: workloads.Put, PayloadSize: 64}, points[4])
	assert.Equal(t, "pilaf/put/64B", points[0].String())
}

func TestConfigOverlay(t *testing.T) {
	base := Config{
		Targets:      []workloads.TargetSystem{workloads.Pilaf},
		Kinds:        []workloads.TestKind{workloads.Put},
		PayloadSizes: []int{64},
	}

	config, err := overlay([]byte("test_kinds: [throughput, lat]\npayload_sizes: [32, 1K]\n"), base)
	require.NoError(t, err)
	assert.Equal(t, []workloads.TargetSystem{workloads.Pilaf}, config.Targets)
	assert.Equal(t, []workloads.TestKind{workloads.Throughput, workloads.Latency}, config.Kinds)
	assert.Equal(t, []int{32, 1024}, config.PayloadSizes)

	_, err = overlay([]byte("targets: [redis]\n"), base)
	assert.Error(t, err)

	_, err = overlay([]byte("test_kinds: [scan]\n"), base)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	config := Config{
		Targets:      []workloads.TargetSystem{workloads.PilafIB, workloads.Echo},
		Kinds:        []workloads.TestKind{workloads.Throughput, workloads.Latency},
		PayloadSizes: []int{64},
	}
	supports := func(point SweepPoint) bool {
		return point.Target == workloads.Echo || point.Kind == workloads.Throughput
	}
	assert.NoError(t, config.Validate(supports))

	config.Targets = []workloads.TargetSystem{workloads.PilafIB}
	assert.Error(t, config.Validate(supports))

	config.Kinds = []workloads.TestKind{workloads.Latency}
	assert.Error(t, config.Validate(supports))

	assert.Error(t, Config{}.Validate(supports))
}
