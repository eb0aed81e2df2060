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
	"strings"

	"github.com/pkg/errors"
)

// PilafSentinel is printed by every DHT client rank which finished its workload.
const PilafSentinel = "COMPLETE -<>-"

// QuorumError is returned when fewer ranks than expected signalled completion.
type QuorumError struct {
	Observed int
	Expected int
	// Lines collected during the run, for failure reports.
	Lines []string
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("only %d of %d ranks signalled completion (%d failed)", e.Observed, e.Expected, e.Expected-e.Observed)
}

// IsQuorumFailure returns true when cause of err is a QuorumError.
func IsQuorumFailure(err error) bool {
	_, ok := errors.Cause(err).(*QuorumError)
	return ok
}

// Tracker counts completion sentinels in a stream of lines.
// It is not safe for concurrent use.
type Tracker struct {
	sentinel string
	expected int
	observed int
	lines    []string
}

// NewTracker returns tracker expecting sentinel from expected ranks.
func NewTracker(sentinel string, expected int) *Tracker {
	return &Tracker{sentinel: sentinel, expected: expected}
}

// Observe records the line and returns true when it is the sentinel.
func (t *Tracker) Observe(line string) bool {
	t.lines = append(t.lines, line)
	if strings.TrimSpace(line) != t.sentinel {
		return false
	}
	t.observed++
	return true
}

// Observed returns number of sentinels seen so far.
func (t *Tracker) Observed() int {
	return t.observed
}

// Expected returns number of ranks which have to signal completion.
func (t *Tracker) Expected() int {
	return t.expected
}

// Lines returns all observed lines.
func (t *Tracker) Lines() []string {
	return t.lines
}

// Verify returns QuorumError when not all expected ranks signalled completion.
func (t *Tracker) Verify() error {
	if t.observed < t.expected {
		return &QuorumError{Observed: t.observed, Expected: t.expected, Lines: t.lines}
	}
	return nil
}
