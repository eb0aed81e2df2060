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

package driver

import (
	"time"

	"github.com/tu-dresden/verticut/pkg/conf"
)

var (
	cleanupSettleFlag     = conf.NewDurationFlag("cleanup_settle", "Wait after killing stale processes", 1*time.Second)
	serverStartSettleFlag = conf.NewDurationFlag("server_start_settle", "Wait after server start before clients are launched", 5*time.Second)
	clientSettleFlag      = conf.NewDurationFlag("client_settle", "Wait between terminations of server and clients", 1*time.Second)
	phaseHeadFlag         = conf.NewDurationFlag("phase_head", "Warm-up phase, ended by the first phase signal", 5*time.Second)
	phaseBulkFlag         = conf.NewDurationFlag("phase_bulk", "Measurement phase, ended by the second phase signal", 20*time.Second)
	phaseTailFlag         = conf.NewDurationFlag("phase_tail", "Cool-down phase, ended by the third phase signal", 5*time.Second)
	pollIntervalFlag      = conf.NewDurationFlag("poll_interval", "Interval of polling client output for new lines", 100*time.Millisecond)
)

// Durations are settle intervals and phase lengths of a run. The benchmarked
// binaries do not report readiness, so fixed waits order the steps.
type Durations struct {
	CleanupSettle     time.Duration
	ServerStartSettle time.Duration
	ClientSettle      time.Duration
	PhaseHead         time.Duration
	PhaseBulk         time.Duration
	PhaseTail         time.Duration
	Poll              time.Duration
}

// DefaultDurations returns durations configured from flags.
func DefaultDurations() Durations {
	return Durations{
		CleanupSettle:     cleanupSettleFlag.Value(),
		ServerStartSettle: serverStartSettleFlag.Value(),
		ClientSettle:      clientSettleFlag.Value(),
		PhaseHead:         phaseHeadFlag.Value(),
		PhaseBulk:         phaseBulkFlag.Value(),
		PhaseTail:         phaseTailFlag.Value(),
		Poll:              pollIntervalFlag.Value(),
	}
}

// Phases returns lengths of head, bulk and tail phases in order.
func (d Durations) Phases() []time.Duration {
	return []time.Duration{d.PhaseHead, d.PhaseBulk, d.PhaseTail}
}
