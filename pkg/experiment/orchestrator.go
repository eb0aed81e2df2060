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
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/driver"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/metadata"
	"github.com/tu-dresden/verticut/pkg/sample"
	"github.com/tu-dresden/verticut/pkg/summary"
	"github.com/tu-dresden/verticut/pkg/workloads"
	"gopkg.in/cheggaaa/pb.v1"
)

// Orchestrator runs every point of the sweep and tabulates results.
// The first failed point aborts the sweep.
type Orchestrator struct {
	config   Config
	runner   Runner
	out      io.Writer
	recorder metadata.Metadata
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

// NewOrchestrator returns orchestrator writing result rows to out. Recorder may be nil.
// Progress bar is shown on stderr unless informational logs are enabled.
func NewOrchestrator(config Config, runner Runner, out io.Writer, recorder metadata.Metadata) *Orchestrator {
	o := &Orchestrator{config: config, runner: runner, out: out, recorder: recorder}
	if logrus.GetLevel() <= logrus.WarnLevel {
		o.Progress = os.Stderr
	}
	return o
}

// Run runs the sweep and returns report of completed points.
// On failure, the report holds points completed before it.
func (o *Orchestrator) Run() (*Report, error) {
	report := &Report{}
	if err := o.config.Validate(o.runner.Supports); err != nil {
		return report, err
	}

	var points []SweepPoint
	for _, point := range o.config.Points() {
		if !o.runner.Supports(point) {
			logrus.Infof("Skipping %s: not supported", point)
			continue
		}
		points = append(points, point)
	}

	bar := o.progress(len(points))
	defer bar.Finish()
	if closer, ok := o.runner.(io.Closer); ok {
		defer closer.Close()
	}

	for _, point := range points {
		logrus.Infof("Running %s", point)
		outcome := o.runner.Run(point)
		if outcome.State == driver.Failed {
			logFailure(point, outcome)
			return report, errors.Wrapf(outcome.Err, "run %s failed", point)
		}

		values := sample.Values(outcome.Samples)
		stats, err := summary.Reduce(values)
		if err != nil {
			logFailure(point, outcome)
			return report, errors.Wrapf(err, "run %s produced no samples", point)
		}
		result := RunResult{Point: point, Summary: stats}
		report.Add(result)

		if point.Kind.Style() == workloads.LatencyStyle {
			writeLatency(o.out, point, values)
		} else {
			writeResult(o.out, result)
		}

		if o.recorder != nil {
			if err := o.recorder.RecordMap(result.Metadata(), metadata.TypeResult); err != nil {
				return report, errors.Wrapf(err, "cannot record result of %s", point)
			}
		}
		bar.Increment()
	}
	return report, nil
}

func (o *Orchestrator) progress(total int) *pb.ProgressBar {
	bar := pb.New(total)
	bar.ShowSpeed = false
	bar.Prefix("sweep ")
	if o.Progress == nil {
		bar.NotPrint = true
		bar.Output = io.Discard
	} else {
		bar.Output = o.Progress
	}
	return bar.Start()
}

// logFailure prints the context of failed run: the error and last lines of its output.
func logFailure(point SweepPoint, outcome driver.Outcome) {
	logrus.Errorf("Run %s failed: %v", point, outcome.Err)
	var quorum *sample.QuorumError
	if errors.As(outcome.Err, &quorum) {
		logrus.Errorf("%d of %d ranks completed", quorum.Observed, quorum.Expected)
	}
	var spawn *driver.SpawnError
	if errors.As(outcome.Err, &spawn) {
		logrus.Errorf("Command: %q", spawn.Command)
	}
	executor.ErrorLogLines(tail(outcome.Lines, executor.OutputLinesCount()), 0)
}

func tail(lines []string, count int) []string {
	if len(lines) <= count {
		return lines
	}
	return lines[len(lines)-count:]
}
