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

package cluster

import (
	"fmt"
	"strings"

	"github.com/tu-dresden/verticut/pkg/conf"
)

var (
	launcherPathFlag = conf.NewStringFlag("cluster_launcher", "Cluster launcher used to start client ranks", "mpirun")
	ranksFlag        = conf.NewIntFlag("cluster_ranks", "Number of client ranks started by cluster launcher", 32)
	hostfileFlag     = conf.NewStringFlag("cluster_hostfile", "Host topology file of cluster launcher", "mpiconf")
)

// Launcher builds invocations of the external cluster launcher, which starts
// a number of ranks of a binary across hosts listed in a hostfile.
type Launcher struct {
	Binary   string
	Ranks    int
	Hostfile string
	// Options are passed to the launcher before the hostfile.
	Options []string
}

// DefaultLauncher returns launcher configured from flags.
func DefaultLauncher() Launcher {
	return Launcher{
		Binary:   launcherPathFlag.Value(),
		Ranks:    ranksFlag.Value(),
		Hostfile: hostfileFlag.Value(),
	}
}

// WithRanks returns copy of launcher starting given number of ranks.
func (l Launcher) WithRanks(ranks int) Launcher {
	l.Ranks = ranks
	return l
}

// WithOptions returns copy of launcher with additional options.
func (l Launcher) WithOptions(options ...string) Launcher {
	l.Options = append(append([]string{}, l.Options...), options...)
	return l
}

// Args returns launcher argument vector running binary with args on all ranks.
func (l Launcher) Args(binary string, args ...string) []string {
	argv := []string{l.Binary, "-n", fmt.Sprint(l.Ranks)}
	argv = append(argv, l.Options...)
	if l.Hostfile != "" {
		argv = append(argv, "-hostfile", l.Hostfile)
	}
	argv = append(argv, binary)
	return append(argv, args...)
}

// Command returns shell command running binary with args on all ranks.
func (l Launcher) Command(binary string, args ...string) string {
	return strings.Join(l.Args(binary, args...), " ")
}
