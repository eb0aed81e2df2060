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
	"path"
	"path/filepath"

	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/sample"
)

var (
	echoServerPathFlag = conf.NewStringFlag("echo_server_path", "Path to multi (TCP echo server) binary", "./multi")
	echoClientPathFlag = conf.NewStringFlag("echo_client_path", "Path to TCP echo client binary", "./client")
	echoPortFlag       = conf.NewIntFlag("echo_port", "Port of echo server, random port from [2048, 65535] when 0", 0)
	echoRoundsFlag     = conf.NewIntFlag("echo_rounds", "Number of rounds of echo clients (-r)", 10)
	echoLogDirFlag     = conf.NewStringFlag("echo_log_dir", "Directory where echo server writes echo_thru.log and echo_lat.log", ".")
	echoSelectionFlag  = conf.NewIntFlag("echo_selection_index", "Index of throughput log line taken as the sample, all lines when negative", 1)
)

const (
	echoThroughputLog = "echo_thru.log"
	echoLatencyLog    = "echo_lat.log"
)

// EchoConfig is a config for the TCP echo benchmark.
// multi supported options:
// -p <port>     port to listen on
// -s <size>     message size
// -r <rounds>   rounds per client
// -L            latency mode, server exits after all rounds
// SIGUSR1 rotates the throughput window in echo_thru.log.
type EchoConfig struct {
	ServerPath string
	ClientPath string
	Port       int
	Rounds     int
	LogDir     string
	Selection  int
}

// DefaultEchoConfig returns echo config with values from flags.
func DefaultEchoConfig() EchoConfig {
	return EchoConfig{
		ServerPath: echoServerPathFlag.Value(),
		ClientPath: echoClientPathFlag.Value(),
		Port:       echoPortFlag.Value(),
		Rounds:     echoRoundsFlag.Value(),
		LogDir:     echoLogDirFlag.Value(),
		Selection:  echoSelectionFlag.Value(),
	}
}

type echo struct {
	conf EchoConfig
}

// NewEcho returns profile of the TCP echo server.
func NewEcho(config EchoConfig) Profile {
	return echo{conf: config}
}

func (e echo) Target() TargetSystem {
	return Echo
}

func (e echo) Supports(kind TestKind) bool {
	return kind == Throughput || kind == Latency
}

func (e echo) Port() int {
	return e.conf.Port
}

func (e echo) ServerBinary() string {
	return e.conf.ServerPath
}

func (e echo) ServerCommand(port int, kind TestKind, payloadSize int) string {
	command := fmt.Sprintf("%s -p %d -s %d -r %d", e.conf.ServerPath, port, payloadSize, e.conf.Rounds)
	if kind.Style() == LatencyStyle {
		command += " -L"
	}
	return command
}

func (e echo) ClientCommand(serverAddress string, port int, kind TestKind, payloadSize int) ClientCommand {
	command := ClientCommand{
		Binary: e.conf.ClientPath,
		Args: []string{
			"-a", serverAddress,
			"-p", fmt.Sprint(port),
			"-s", fmt.Sprint(payloadSize),
			"-r", fmt.Sprint(e.conf.Rounds),
		},
	}
	// Latency is measured with a single client.
	if kind.Style() == ThroughputStyle {
		command.Distributed = true
		command.LauncherOptions = []string{"--mca", "btl", "tcp,self"}
	}
	return command
}

func (e echo) ReuseServer(kind TestKind) bool {
	return false
}

func (e echo) StaleServers() []string {
	return []string{path.Base(e.conf.ServerPath)}
}

func (e echo) StaleClients() []string {
	return []string{path.Base(e.conf.ClientPath)}
}

func (e echo) Measurement(kind TestKind, payloadSize int) Measurement {
	if kind.Style() == LatencyStyle {
		return Measurement{
			Source:    LatencyLog,
			Filter:    sample.NewFilter(sample.Raw, payloadSize),
			LogFile:   filepath.Join(e.conf.LogDir, echoLatencyLog),
			Selection: -1,
		}
	}
	return Measurement{
		Source:       ServerLog,
		Filter:       sample.NewFilter(sample.Rate, payloadSize),
		LogFile:      filepath.Join(e.conf.LogDir, echoThroughputLog),
		PhaseSignals: true,
		Selection:    e.conf.Selection,
	}
}
