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

	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/sample"
)

var (
	pilafIBPathFlag         = conf.NewStringFlag("pilaf_ib_path", "Path to ib-test binary (server and client)", "./ib-test")
	pilafIBPortFlag         = conf.NewIntFlag("pilaf_ib_port", "Port of ib-test server", 4001)
	pilafIBServerConfigFlag = conf.NewStringFlag("pilaf_ib_server_config", "Server configuration passed to ib-test clients (-c)", "dht-one16.cnf")
	pilafIBModeFlag         = conf.NewStringFlag("pilaf_ib_mode", "Verbs test mode of ib-test clients: 1, 2 or r", "2")
	pilafIBPullItemFlag     = conf.NewIntFlag("pilaf_ib_pull_item", "Iteration of ib-test histogram taken as the sample of each client", 10)
)

// PilafIBConfig is a config for the raw verbs benchmark of the Pilaf transport.
// ib-test supported options:
// s <port>      run as server listening on port
// -c <config>   run as client of server listed in config
// -1 | -2 | -r  one sided, two sided or read test
// -m <size>     message size tag
// -t throughput throughput mode
type PilafIBConfig struct {
	Path         string
	Port         int
	ServerConfig string
	Mode         string
	PullItem     int
}

// DefaultPilafIBConfig returns verbs test config with values from flags.
func DefaultPilafIBConfig() PilafIBConfig {
	return PilafIBConfig{
		Path:         pilafIBPathFlag.Value(),
		Port:         pilafIBPortFlag.Value(),
		ServerConfig: pilafIBServerConfigFlag.Value(),
		Mode:         pilafIBModeFlag.Value(),
		PullItem:     pilafIBPullItemFlag.Value(),
	}
}

type pilafIB struct {
	conf PilafIBConfig
}

// NewPilafIB returns profile of the verbs test. Clients print a histogram of
// iterations tagged with message size; one iteration per client is sampled.
func NewPilafIB(config PilafIBConfig) Profile {
	return pilafIB{conf: config}
}

func (p pilafIB) Target() TargetSystem {
	return PilafIB
}

func (p pilafIB) Supports(kind TestKind) bool {
	return kind == Throughput
}

func (p pilafIB) Port() int {
	return p.conf.Port
}

func (p pilafIB) ServerBinary() string {
	return p.conf.Path
}

func (p pilafIB) ServerCommand(port int, kind TestKind, payloadSize int) string {
	return fmt.Sprintf("%s s %d", p.conf.Path, port)
}

func (p pilafIB) ClientCommand(serverAddress string, port int, kind TestKind, payloadSize int) ClientCommand {
	return ClientCommand{
		Binary: p.conf.Path,
		Args: []string{
			"-c", p.conf.ServerConfig,
			"-" + p.conf.Mode,
			"-m", fmt.Sprint(payloadSize),
			"-t", "throughput",
		},
		Distributed:     true,
		LauncherOptions: []string{"-bynode"},
	}
}

func (p pilafIB) ReuseServer(kind TestKind) bool {
	return false
}

func (p pilafIB) StaleServers() []string {
	return []string{path.Base(p.conf.Path)}
}

func (p pilafIB) StaleClients() []string {
	return nil
}

func (p pilafIB) Measurement(kind TestKind, payloadSize int) Measurement {
	return Measurement{
		Source:    ClientStream,
		Filter:    sample.NewFilter(sample.Tagged, payloadSize).WithPosition(p.conf.PullItem),
		Selection: -1,
	}
}
