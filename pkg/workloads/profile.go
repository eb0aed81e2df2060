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
	"github.com/tu-dresden/verticut/pkg/sample"
)

// Source tells where samples of a run are read from.
type Source int

const (
	// ClientStream is the combined output of the client group, read incrementally.
	ClientStream Source = iota
	// ServerLog is a throughput log written by the server, read once after phase signals.
	ServerLog
	// LatencyLog is a latency log written by the server, read once after it exits.
	LatencyLog
)

func (s Source) String() string {
	switch s {
	case ClientStream:
		return "client stream"
	case ServerLog:
		return "server log"
	case LatencyLog:
		return "latency log"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Measurement describes how samples of one run are collected.
type Measurement struct {
	Source Source
	Filter sample.Filter
	// Sentinel printed by every client rank when done. Empty disables completion tracking.
	Sentinel string
	// LogFile read for ServerLog and LatencyLog sources.
	LogFile string
	// PhaseSignals enables head/bulk/tail signals sent to the server.
	PhaseSignals bool
	// Selection index applied to parsed samples. Negative keeps all of them.
	Selection int
}

// ClientCommand is the client part of a run.
type ClientCommand struct {
	Binary string
	Args   []string
	// Distributed clients are started on all ranks through the cluster launcher,
	// otherwise a single client is started by the executor.
	Distributed bool
	// LauncherOptions are passed to the cluster launcher before the binary.
	LauncherOptions []string
}

// String renders the client invocation without the cluster launcher.
func (c ClientCommand) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}

// Profile knows how to start and measure one target system.
type Profile interface {
	// Target returns the benchmarked system.
	Target() TargetSystem
	// Supports returns true when the target can be benchmarked with kind.
	Supports(kind TestKind) bool
	// Port returns fixed server port or 0 when the port should be randomized.
	Port() int
	// ServerBinary returns path to server binary.
	ServerBinary() string
	// ServerCommand returns server invocation.
	ServerCommand(port int, kind TestKind, payloadSize int) string
	// ClientCommand returns client invocation.
	ClientCommand(serverAddress string, port int, kind TestKind, payloadSize int) ClientCommand
	// ReuseServer returns true when a run of kind continues with the server left
	// running by the previous run instead of cleaning up and starting a new one.
	ReuseServer(kind TestKind) bool
	// StaleServers returns names of processes killed on the server host before a run.
	StaleServers() []string
	// StaleClients returns names of processes killed on all cluster hosts before a run.
	StaleClients() []string
	// Measurement describes how samples are collected.
	Measurement(kind TestKind, payloadSize int) Measurement
}

// NewProfile returns profile of target configured from flags. Clients is the
// number of client ranks started by the cluster launcher.
func NewProfile(target TargetSystem, clients int) (Profile, error) {
	switch target {
	case Pilaf:
		config, err := DefaultPilafConfig(clients)
		if err != nil {
			return nil, err
		}
		return NewPilaf(config), nil
	case PilafIB:
		return NewPilafIB(DefaultPilafIBConfig()), nil
	case Echo:
		return NewEcho(DefaultEchoConfig()), nil
	case Memcached:
		return nil, errors.Errorf("%s is a search backend and cannot be benchmarked directly", target)
	}
	return nil, errors.Errorf("no profile for %s", target)
}

// Binaries returns paths of binaries used by profile for given kinds.
func Binaries(profile Profile, kinds []TestKind) []string {
	binaries := []string{profile.ServerBinary()}
	seen := map[string]bool{profile.ServerBinary(): true}
	for _, kind := range kinds {
		if !profile.Supports(kind) {
			continue
		}
		client := profile.ClientCommand("", 0, kind, 0).Binary
		if !seen[client] {
			seen[client] = true
			binaries = append(binaries, client)
		}
	}
	return binaries
}

// ReusesServers returns true when runs of some test kind continue with the
// server of the previous run, so servers have to be kept after completed runs.
func ReusesServers(profile Profile) bool {
	for _, kind := range []TestKind{Throughput, Latency, Put, Get} {
		if profile.ReuseServer(kind) {
			return true
		}
	}
	return false
}
