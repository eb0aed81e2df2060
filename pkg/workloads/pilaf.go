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

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/sample"
)

var (
	pilafPathFlag         = conf.NewStringFlag("pilaf_path", "Path to dht-test binary (server and client)", "./dht-test")
	pilafPortFlag         = conf.NewIntFlag("pilaf_port", "Port of dht-test server", 4000)
	pilafClientConfigFlag = conf.NewStringFlag("pilaf_client_config", "DHT configuration file passed to clients (-c)", "dht-one.cnf")
	pilafLogFileFlag      = conf.NewStringFlag("pilaf_server_log", "Operation log of dht-test server (-l), disabled when empty", "")
	pilafItemsFlag        = conf.NewIntFlag("pilaf_items_per_client", "Items put and got by every client (-P), derived from pilaf_table_memory when 0", 0)
	pilafTableMemoryFlag  = conf.NewStringFlag("pilaf_table_memory", "Memory of DHT servers shared by items of all clients", "14G")
)

const (
	// pilafItemFootprint is the size of one item in the table: key, header and value.
	pilafItemFootprint = 64 + 16 + 64
	pilafMaxItems      = 1000000
	pilafTableMemory   = 14 << 30
)

// PilafConfig is a config for the Pilaf DHT benchmark.
// dht-test supported options:
// -s <port>     run as server listening on port
// -c <config>   run as client of servers listed in config
// -T            timing mode
// -r            randomized keys
// -t <p|g>      test to run (put or get)
// -P <num>      number of items per client
// -l <file>     server operation log
type PilafConfig struct {
	Path         string
	Port         int
	ClientConfig string
	LogFile      string
	// Clients is the number of client ranks sharing the table.
	Clients int
	// ItemsPerClient overrides the number of items derived from TableMemory.
	ItemsPerClient int
	// TableMemory in bytes, 14GiB when 0.
	TableMemory uint64
}

// DefaultPilafConfig returns Pilaf config with values from flags for given number of client ranks.
func DefaultPilafConfig(clients int) (PilafConfig, error) {
	memory, err := bytefmt.ToBytes(pilafTableMemoryFlag.Value())
	if err != nil {
		return PilafConfig{}, errors.Wrapf(err, "invalid pilaf_table_memory %q", pilafTableMemoryFlag.Value())
	}
	return PilafConfig{
		Path:           pilafPathFlag.Value(),
		Port:           pilafPortFlag.Value(),
		ClientConfig:   pilafClientConfigFlag.Value(),
		LogFile:        pilafLogFileFlag.Value(),
		Clients:        clients,
		ItemsPerClient: pilafItemsFlag.Value(),
		TableMemory:    memory,
	}, nil
}

// Items returns number of items put and got by every client. Items of all
// clients fill the table memory, at most a million per client.
func (c PilafConfig) Items() int {
	if c.ItemsPerClient > 0 {
		return c.ItemsPerClient
	}
	clients := c.Clients
	if clients < 1 {
		clients = 1
	}
	memory := c.TableMemory
	if memory == 0 {
		memory = pilafTableMemory
	}
	items := memory / uint64(clients*pilafItemFootprint)
	if items > pilafMaxItems {
		return pilafMaxItems
	}
	return int(items)
}

type pilaf struct {
	conf PilafConfig
}

// NewPilaf returns profile of the Pilaf DHT. Clients print one throughput value
// per rank followed by the completion sentinel. Get runs read the table filled
// by the preceding put run, so they reuse its server.
func NewPilaf(config PilafConfig) Profile {
	return pilaf{conf: config}
}

func (p pilaf) Target() TargetSystem {
	return Pilaf
}

func (p pilaf) Supports(kind TestKind) bool {
	return kind == Put || kind == Get
}

func (p pilaf) Port() int {
	return p.conf.Port
}

func (p pilaf) ServerBinary() string {
	return p.conf.Path
}

func (p pilaf) ServerCommand(port int, kind TestKind, payloadSize int) string {
	command := fmt.Sprintf("%s -s %d -T", p.conf.Path, port)
	if p.conf.LogFile != "" {
		command += " -l " + p.conf.LogFile
	}
	return command
}

func (p pilaf) ClientCommand(serverAddress string, port int, kind TestKind, payloadSize int) ClientCommand {
	return ClientCommand{
		Binary: p.conf.Path,
		Args: []string{
			"-c", p.conf.ClientConfig,
			"-T", "-r",
			"-t", kind.Code(),
			"-P", fmt.Sprint(p.conf.Items()),
		},
		Distributed:     true,
		LauncherOptions: []string{"-bynode"},
	}
}

func (p pilaf) ReuseServer(kind TestKind) bool {
	return kind == Get
}

func (p pilaf) StaleServers() []string {
	return []string{path.Base(p.conf.Path)}
}

func (p pilaf) StaleClients() []string {
	return nil
}

func (p pilaf) Measurement(kind TestKind, payloadSize int) Measurement {
	return Measurement{
		Source:    ClientStream,
		Filter:    sample.NewFilter(sample.Raw, payloadSize),
		Sentinel:  sample.PilafSentinel,
		Selection: -1,
	}
}
