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
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/cluster"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/sample"
	"github.com/tu-dresden/verticut/pkg/utils/err_collection"
	"github.com/tu-dresden/verticut/pkg/utils/fs"
	"github.com/tu-dresden/verticut/pkg/utils/random"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

// PhaseSignal rotates the measurement window of the server.
const PhaseSignal = syscall.SIGUSR1

// State is the terminal state of a run.
type State int

const (
	// Completed runs collected their samples.
	Completed State = iota
	// Failed runs carry the reason in Outcome.Err.
	Failed
)

func (s State) String() string {
	if s == Completed {
		return "completed"
	}
	return "failed"
}

// Outcome is the result of one run.
type Outcome struct {
	State   State
	Samples []sample.Sample
	// Lines read from the sample source, kept for failure reports.
	Lines []string
	Err   error
}

func failed(err error, lines []string) Outcome {
	return Outcome{State: Failed, Err: err, Lines: lines}
}

// PortPicker returns a server port for a run.
type PortPicker func() int

// Config of the driver.
type Config struct {
	// Executor starts the server and the cluster launcher.
	Executor executor.Executor
	// ClientExecutor starts a single client when the profile does not use the launcher.
	ClientExecutor executor.Executor
	Cleaner        cluster.Cleaner
	Launcher       cluster.Launcher
	Profile        workloads.Profile
	Durations      Durations
	// Ports picks server port when profile has no fixed one.
	Ports PortPicker
	// ServerAddress is passed to clients which connect to the server directly.
	ServerAddress string
}

// Driver runs the server and clients of one target system through cleanup,
// start, measurement, phase signals and teardown.
type Driver struct {
	conf Config
	// server left running by the last completed run for the next run to reuse.
	server     executor.TaskHandle
	serverPort int
}

// New returns driver. Missing client executor and port picker are defaulted.
func New(config Config) *Driver {
	if config.ClientExecutor == nil {
		config.ClientExecutor = config.Executor
	}
	if config.Ports == nil {
		config.Ports = random.Port
	}
	return &Driver{conf: config}
}

// Profile returns profile of the driven target.
func (d *Driver) Profile() workloads.Profile {
	return d.conf.Profile
}

// run holds process handles of one run. Teardown stops each of them once.
type run struct {
	durations Durations
	server    executor.TaskHandle
	client    executor.TaskHandle
	torn      bool
	// keepServer leaves the server running on teardown.
	keepServer bool
}

func (r *run) teardown() {
	if r.torn {
		return
	}
	r.torn = true

	server := r.server
	if r.keepServer {
		server = nil
	}
	var errs errcollection.ErrorCollection
	for i, handle := range []executor.TaskHandle{r.client, server} {
		if handle == nil {
			continue
		}
		if i > 0 {
			time.Sleep(r.durations.ClientSettle)
		}
		errs.Add(handle.Stop())
		errs.Add(handle.Clean())
	}
	if r.client != nil || server != nil {
		time.Sleep(r.durations.ClientSettle)
	}
	if err := errs.GetErrIfAny(); err != nil {
		logrus.Errorf("Teardown: %v", err)
	}
}

// Run drives one run of the profile with given test kind and payload size.
// Processes started by the run are terminated on every return path, except
// a server kept after a completed run for the next run to reuse.
func (d *Driver) Run(kind workloads.TestKind, payloadSize int) Outcome {
	profile := d.conf.Profile
	if !profile.Supports(kind) {
		return failed(errors.Errorf("%s does not support %s test", profile.Target(), kind), nil)
	}
	measurement := profile.Measurement(kind, payloadSize)

	r := &run{durations: d.conf.Durations}
	defer r.teardown()

	server, port := d.takeServer(kind)
	if server != nil {
		logrus.Debugf("Reusing %s server on port %d for %s test", profile.Target(), port, kind)
		r.server = server
	} else {
		d.cleanup(profile, measurement)

		port = profile.Port()
		if port == 0 {
			port = d.conf.Ports()
		}

		// exec makes the server replace the shell, so signals reach it directly.
		serverCommand := "exec " + profile.ServerCommand(port, kind, payloadSize)
		logrus.Debugf("Starting %s server: %q", profile.Target(), serverCommand)
		var err error
		server, err = d.conf.Executor.Execute(serverCommand)
		if err != nil {
			return failed(&SpawnError{Command: serverCommand, Err: err}, nil)
		}
		r.server = server
		time.Sleep(d.conf.Durations.ServerStartSettle)
	}

	clientCommand, clientExecutor, ranks := d.clientCommand(profile, port, kind, payloadSize)
	logrus.Debugf("Starting %d %s client(s): %q", ranks, profile.Target(), clientCommand)
	client, err := clientExecutor.Execute(clientCommand)
	if err != nil {
		return failed(&SpawnError{Command: clientCommand, Err: err}, nil)
	}
	r.client = client

	if measurement.PhaseSignals {
		if err := d.signalPhases(server); err != nil {
			return failed(err, nil)
		}
	}

	var lines []string
	switch measurement.Source {
	case workloads.ClientStream:
		lines, err = d.measureClientStream(client, measurement, ranks)
	case workloads.ServerLog:
		// Server flushes its log when it is stopped.
		r.teardown()
		lines, err = fs.ReadLines(measurement.LogFile)
	case workloads.LatencyLog:
		server.Wait(0)
		time.Sleep(d.conf.Durations.ClientSettle)
		lines, err = fs.ReadLines(measurement.LogFile)
	default:
		err = errors.Errorf("unknown sample source %s", measurement.Source)
	}
	if err != nil {
		return failed(err, lines)
	}

	samples := sample.Select(sample.ParseAll(lines, measurement.Filter), measurement.Selection)
	logrus.Debugf("Collected %d samples of %s %s at %d", len(samples), profile.Target(), kind, payloadSize)

	if !r.torn && workloads.ReusesServers(profile) {
		r.keepServer = true
		d.server, d.serverPort = server, port
	}
	return Outcome{State: Completed, Samples: samples, Lines: lines}
}

// takeServer returns server kept by the previous run when a run of kind reuses it.
// Kept server which cannot be reused is stopped.
func (d *Driver) takeServer(kind workloads.TestKind) (executor.TaskHandle, int) {
	server, port := d.server, d.serverPort
	d.server, d.serverPort = nil, 0
	if server == nil {
		return nil, 0
	}
	if d.conf.Profile.ReuseServer(kind) && server.Status() == executor.RUNNING {
		return server, port
	}
	if d.conf.Profile.ReuseServer(kind) {
		logrus.Warnf("Kept %s server has ended, starting a new one", d.conf.Profile.Target())
	}
	stopServer(server)
	return nil, 0
}

// Close stops the server kept for reuse.
func (d *Driver) Close() error {
	server := d.server
	d.server, d.serverPort = nil, 0
	if server == nil {
		return nil
	}
	return stopServer(server)
}

func stopServer(server executor.TaskHandle) error {
	var errs errcollection.ErrorCollection
	errs.Add(server.Stop())
	errs.Add(server.Clean())
	err := errs.GetErrIfAny()
	if err != nil {
		logrus.Errorf("Cannot stop kept server: %v", err)
	}
	return err
}

// cleanup kills stale processes and removes log left by the previous run.
func (d *Driver) cleanup(profile workloads.Profile, measurement workloads.Measurement) {
	d.conf.Cleaner.Clean(profile.StaleServers(), profile.StaleClients())
	if measurement.LogFile != "" {
		if err := os.Remove(measurement.LogFile); err != nil && !os.IsNotExist(err) {
			logrus.Debugf("Cannot remove stale log %q: %v", measurement.LogFile, err)
		}
	}
	time.Sleep(d.conf.Durations.CleanupSettle)
}

func (d *Driver) clientCommand(profile workloads.Profile, port int, kind workloads.TestKind, payloadSize int) (string, executor.Executor, int) {
	client := profile.ClientCommand(d.conf.ServerAddress, port, kind, payloadSize)
	if !client.Distributed {
		return client.String() + " 2>&1", d.conf.ClientExecutor, 1
	}
	launcher := d.conf.Launcher.WithOptions(client.LauncherOptions...)
	return launcher.Command(client.Binary, client.Args...) + " 2>&1", d.conf.Executor, launcher.Ranks
}

// signalPhases ends head, bulk and tail phases with a phase signal to the server.
func (d *Driver) signalPhases(server executor.TaskHandle) error {
	for i, phase := range d.conf.Durations.Phases() {
		time.Sleep(phase)
		logrus.Debugf("Phase %d ended, signalling %v", i, server)
		if err := server.Signal(PhaseSignal); err != nil {
			return errors.Wrapf(err, "phase %d signal failed", i)
		}
	}
	return nil
}

// measureClientStream follows client output until every rank printed its sample
// (and sentinel when tracked) or the client group exited.
func (d *Driver) measureClientStream(client executor.TaskHandle, measurement workloads.Measurement, ranks int) ([]string, error) {
	var tracker *sample.Tracker
	if measurement.Sentinel != "" {
		tracker = sample.NewTracker(measurement.Sentinel, ranks)
	}

	var lines []string
	samples := 0
	err := follow(client, d.conf.Durations.Poll, func(line string) bool {
		lines = append(lines, line)
		if tracker != nil && tracker.Observe(line) {
			return samples >= ranks && tracker.Observed() >= ranks
		}
		if _, ok := sample.Parse(line, measurement.Filter); ok {
			samples++
		}
		return samples >= ranks && (tracker == nil || tracker.Observed() >= ranks)
	})
	if err != nil {
		return lines, err
	}

	if tracker != nil {
		if err := tracker.Verify(); err != nil {
			logrus.Errorf("%v", err)
			for _, line := range lines {
				logrus.Debugf("client: %s", line)
			}
			return lines, err
		}
	}
	return lines, nil
}

func (o Outcome) String() string {
	if o.State == Completed {
		return fmt.Sprintf("%s with %d samples", o.State, len(o.Samples))
	}
	return fmt.Sprintf("%s: %v", o.State, o.Err)
}
