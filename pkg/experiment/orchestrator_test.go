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
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tu-dresden/verticut/pkg/cluster"
	"github.com/tu-dresden/verticut/pkg/driver"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/metadata"
	"github.com/tu-dresden/verticut/pkg/sample"
	"github.com/tu-dresden/verticut/pkg/summary"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

// scriptedRunner returns prepared outcomes and records run points.
type scriptedRunner struct {
	outcomes map[SweepPoint]driver.Outcome
	runs     []SweepPoint
}

func (r *scriptedRunner) Supports(point SweepPoint) bool {
	return !(point.Target == workloads.Echo && point.Kind == workloads.Put)
}

func (r *scriptedRunner) Run(point SweepPoint) driver.Outcome {
	r.runs = append(r.runs, point)
	if outcome, ok := r.outcomes[point]; ok {
		return outcome
	}
	return driver.Outcome{State: driver.Completed, Samples: []sample.Sample{{Value: float64(point.PayloadSize)}}}
}

func samplesOf(values ...float64) []sample.Sample {
	var samples []sample.Sample
	for _, value := range values {
		samples = append(samples, sample.Sample{Value: value})
	}
	return samples
}

func TestOrchestrator(t *testing.T) {
	Convey("While orchestrating a sweep", t, func() {
		config := Config{
			Targets:      []workloads.TargetSystem{workloads.Echo},
			Kinds:        []workloads.TestKind{workloads.Throughput, workloads.Latency},
			PayloadSizes: []int{64, 128},
		}
		runner := &scriptedRunner{outcomes: map[SweepPoint]driver.Outcome{}}
		out := &bytes.Buffer{}
		recorder := metadata.NewMemory("test")

		Convey("Points run in order of target, test kind and payload size", func() {
			latency := SweepPoint{Target: workloads.Echo, Kind: workloads.Latency, PayloadSize: 64}
			runner.outcomes[latency] = driver.Outcome{State: driver.Completed, Samples: samplesOf(12.5, 13.5)}

			report, err := NewOrchestrator(config, runner, out, recorder).Run()
			So(err, ShouldBeNil)
			So(runner.runs, ShouldHaveLength, 4)
			So(runner.runs[0].Kind, ShouldEqual, workloads.Throughput)
			So(runner.runs[2], ShouldResemble, latency)

			So(out.String(), ShouldEqual, strings.Join([]string{
				"THRU\t64\t64.000000\t64.000000\t0.000000\t64.000000\t1",
				"THRU\t128\t128.000000\t128.000000\t0.000000\t128.000000\t1",
				"LAT\t64\t12.500000",
				"LAT\t64\t13.500000",
				"LAT\t128\t128.000000",
			}, "\n")+"\n")

			So(report.Results, ShouldHaveLength, 4)
			So(report.Results[2].Summary, ShouldResemble, summary.Summary{Min: 12.5, Avg: 13, StdDev: 0.5, Max: 13.5, Count: 2})

			results, err := recorder.GetByKind(metadata.TypeResult)
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 4)
			So(results[3]["kind"], ShouldEqual, "latency")
		})

		Convey("Unsupported points are skipped", func() {
			config.Targets = []workloads.TargetSystem{workloads.Pilaf, workloads.Echo}
			config.Kinds = []workloads.TestKind{workloads.Throughput, workloads.Put}

			report, err := NewOrchestrator(config, runner, out, nil).Run()
			So(err, ShouldBeNil)
			So(runner.runs, ShouldHaveLength, 6)
			So(runner.runs[2], ShouldResemble, SweepPoint{Target: workloads.Pilaf, Kind: workloads.Put, PayloadSize: 64})
			So(runner.runs[5], ShouldResemble, SweepPoint{Target: workloads.Echo, Kind: workloads.Throughput, PayloadSize: 128})
			So(report.Results, ShouldHaveLength, 6)
		})

		Convey("Failed point aborts the sweep", func() {
			failure := SweepPoint{Target: workloads.Echo, Kind: workloads.Throughput, PayloadSize: 128}
			quorum := &sample.QuorumError{Observed: 30, Expected: 32}
			runner.outcomes[failure] = driver.Outcome{State: driver.Failed, Err: quorum, Lines: []string{"100", sample.PilafSentinel}}

			report, err := NewOrchestrator(config, runner, out, nil).Run()
			So(err, ShouldNotBeNil)
			So(sample.IsQuorumFailure(err), ShouldBeTrue)
			So(runner.runs, ShouldHaveLength, 2)
			So(report.Results, ShouldHaveLength, 1)
		})

		Convey("Point without samples aborts the sweep", func() {
			empty := SweepPoint{Target: workloads.Echo, Kind: workloads.Throughput, PayloadSize: 64}
			runner.outcomes[empty] = driver.Outcome{State: driver.Completed}

			_, err := NewOrchestrator(config, runner, out, nil).Run()
			So(errors.Cause(err), ShouldEqual, summary.ErrEmptySampleSet)
			So(runner.runs, ShouldHaveLength, 1)
			So(out.String(), ShouldBeEmpty)
		})

		Convey("Sweep without any supported kind for a target is rejected before running", func() {
			config.Kinds = []workloads.TestKind{workloads.Put}
			_, err := NewOrchestrator(config, runner, out, nil).Run()
			So(err, ShouldNotBeNil)
			So(runner.runs, ShouldBeEmpty)
		})
	})
}

type noopCleaner struct{}

func (noopCleaner) Clean(servers []string, clients []string) {}

// shellProfile runs sleep as a server and prints samples with printf as clients.
type shellProfile struct {
	values func(kind workloads.TestKind, payloadSize int) []string
	// distributed clients are started through the cluster launcher.
	distributed bool
}

func (p shellProfile) Target() workloads.TargetSystem { return workloads.Pilaf }
func (p shellProfile) Supports(kind workloads.TestKind) bool {
	return kind == workloads.Throughput || kind == workloads.Latency
}
func (p shellProfile) Port() int            { return 4000 }
func (p shellProfile) ServerBinary() string { return "sleep" }
func (p shellProfile) ServerCommand(port int, kind workloads.TestKind, payloadSize int) string {
	return "sleep 30"
}
func (p shellProfile) ClientCommand(serverAddress string, port int, kind workloads.TestKind, payloadSize int) workloads.ClientCommand {
	args := []string{`'%s\n'`}
	args = append(args, p.values(kind, payloadSize)...)
	args = append(args, fmt.Sprintf("'%s'", sample.PilafSentinel))
	return workloads.ClientCommand{Binary: "printf", Args: args, Distributed: p.distributed}
}
func (p shellProfile) ReuseServer(workloads.TestKind) bool { return false }
func (p shellProfile) StaleServers() []string { return []string{"sleep"} }
func (p shellProfile) StaleClients() []string { return []string{"printf"} }
func (p shellProfile) Measurement(kind workloads.TestKind, payloadSize int) workloads.Measurement {
	return workloads.Measurement{
		Source:    workloads.ClientStream,
		Filter:    sample.NewFilter(sample.Raw, payloadSize),
		Sentinel:  sample.PilafSentinel,
		Selection: -1,
	}
}

func shellDriver(outputDir string, profile workloads.Profile, launcher cluster.Launcher) *driver.Driver {
	return driver.New(driver.Config{
		Executor:  executor.NewLocalWithOutputDir(outputDir),
		Cleaner:   noopCleaner{},
		Launcher:  launcher,
		Profile:   profile,
		Durations: driver.Durations{Poll: 10 * time.Millisecond},
	})
}

func TestSweepEndToEnd(t *testing.T) {
	Convey("While running a sweep with local processes", t, func() {
		outputDir, err := ioutil.TempDir("", "sweep")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)

		config := Config{
			Targets:      []workloads.TargetSystem{workloads.Pilaf},
			Kinds:        []workloads.TestKind{workloads.Throughput, workloads.Latency},
			PayloadSizes: []int{64, 128},
		}
		out := &bytes.Buffer{}

		Convey("Every point produces its rows", func() {
			profile := shellProfile{values: func(kind workloads.TestKind, payloadSize int) []string {
				if kind == workloads.Latency {
					return []string{"12.5", "13.5"}
				}
				return []string{fmt.Sprint(payloadSize * 10)}
			}}

			report, err := NewOrchestrator(config, NewDrivers(shellDriver(outputDir, profile, cluster.Launcher{})), out, nil).Run()
			So(err, ShouldBeNil)
			So(report.Results, ShouldHaveLength, 4)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			So(lines, ShouldHaveLength, 6)
			So(lines[0], ShouldEqual, "THRU\t64\t640.000000\t640.000000\t0.000000\t640.000000\t1")
			So(lines[1], ShouldStartWith, "THRU\t128\t1280.000000")
			So(lines[2:], ShouldResemble, []string{
				"LAT\t64\t12.500000", "LAT\t64\t13.500000",
				"LAT\t128\t12.500000", "LAT\t128\t13.500000",
			})
		})

		Convey("Missing completion markers abort the sweep", func() {
			// Launcher stand-in which reports completion of 30 ranks only and fails
			// right away, as mpirun does when some ranks abort.
			launcherPath := path.Join(outputDir, "fake-launcher")
			script := "#!/bin/sh\ni=0\nwhile [ $i -lt 30 ]; do echo 100; echo '" + sample.PilafSentinel + "'; i=$((i+1)); done\nexit 1\n"
			So(ioutil.WriteFile(launcherPath, []byte(script), 0755), ShouldBeNil)

			profile := shellProfile{distributed: true, values: func(workloads.TestKind, int) []string { return nil }}
			launcher := cluster.Launcher{Binary: launcherPath, Ranks: 32}

			report, err := NewOrchestrator(config, NewDrivers(shellDriver(outputDir, profile, launcher)), out, nil).Run()
			So(sample.IsQuorumFailure(err), ShouldBeTrue)
			So(driver.IsSpawnFailure(err), ShouldBeFalse)

			var quorum *sample.QuorumError
			So(errors.As(err, &quorum), ShouldBeTrue)
			So(quorum.Observed, ShouldEqual, 30)
			So(quorum.Expected, ShouldEqual, 32)
			So(report.Results, ShouldBeEmpty)
			So(out.String(), ShouldBeEmpty)
		})
	})
}
