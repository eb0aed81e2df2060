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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/executor"
)

var (
	cleanupModeFlag    = conf.NewStringFlag("cleanup_mode", "How stale client processes are killed on cluster hosts: launcher, ssh or local", "launcher")
	cleanupTimeoutFlag = conf.NewDurationFlag("cleanup_timeout", "Maximum time of a single stale process kill", 30*time.Second)
)

// CleanupMode selects how stale client processes are killed.
type CleanupMode int

const (
	// LauncherCleanup runs killall on every host through the cluster launcher.
	LauncherCleanup CleanupMode = iota
	// SSHCleanup runs killall on every host of the hostfile over ssh.
	SSHCleanup
	// LocalCleanup kills client processes on local host only.
	LocalCleanup
)

// ParseCleanupMode returns cleanup mode for its name.
func ParseCleanupMode(name string) (CleanupMode, error) {
	switch name {
	case "launcher":
		return LauncherCleanup, nil
	case "ssh":
		return SSHCleanup, nil
	case "local":
		return LocalCleanup, nil
	}
	return 0, errors.Errorf("unknown cleanup mode %q (expected launcher, ssh or local)", name)
}

func (m CleanupMode) String() string {
	switch m {
	case LauncherCleanup:
		return "launcher"
	case SSHCleanup:
		return "ssh"
	case LocalCleanup:
		return "local"
	}
	return fmt.Sprintf("CleanupMode(%d)", int(m))
}

// Cleaner kills stale benchmark processes. Cleaning is best effort: processes
// which are not running are expected and failures are only logged.
type Cleaner interface {
	// Clean kills servers on local host and clients on all cluster hosts.
	Clean(servers []string, clients []string)
}

// ExecutorFactory returns executor running commands on host.
type ExecutorFactory func(host string) (executor.Executor, error)

type cleaner struct {
	mode     CleanupMode
	local    executor.Executor
	launcher Launcher
	hosts    []Host
	remote   ExecutorFactory
	timeout  time.Duration
}

// NewCleaner returns cleaner. The hosts are used by LauncherCleanup (one rank per host)
// and SSHCleanup (one connection per host, created with remote).
func NewCleaner(mode CleanupMode, local executor.Executor, launcher Launcher, hosts []Host, remote ExecutorFactory) Cleaner {
	return cleaner{
		mode:     mode,
		local:    local,
		launcher: launcher,
		hosts:    hosts,
		remote:   remote,
		timeout:  cleanupTimeoutFlag.Value(),
	}
}

// NewCleanerFromFlags returns cleaner configured with cleanup_mode flag. Hosts are
// read from the launcher hostfile unless cleanup is local.
func NewCleanerFromFlags(local executor.Executor, launcher Launcher, outputDir string) (Cleaner, error) {
	mode, err := ParseCleanupMode(cleanupModeFlag.Value())
	if err != nil {
		return nil, err
	}

	var hosts []Host
	if mode != LocalCleanup {
		hosts, err = ReadHostfile(launcher.Hostfile)
		if err != nil {
			return nil, err
		}
	}

	remote := func(host string) (executor.Executor, error) {
		return executor.CreateExecutor(host, outputDir)
	}
	return NewCleaner(mode, local, launcher, hosts, remote), nil
}

func killCommand(names []string) string {
	return "killall -9 " + strings.Join(names, " ")
}

func (c cleaner) Clean(servers []string, clients []string) {
	if len(servers) > 0 {
		c.run(c.local, killCommand(servers))
	}
	if len(clients) == 0 {
		return
	}

	switch c.mode {
	case LauncherCleanup:
		hostsCount := len(c.hosts)
		if hostsCount == 0 {
			hostsCount = 1
		}
		launcher := c.launcher.WithRanks(hostsCount).WithOptions("-bynode")
		c.run(c.local, launcher.Command("killall", "-9", strings.Join(clients, " ")))
	case SSHCleanup:
		for _, host := range c.hosts {
			remote, err := c.remote(host.Name)
			if err != nil {
				logrus.Debugf("Cannot connect to %q for cleanup: %v", host.Name, err)
				continue
			}
			c.run(remote, killCommand(clients))
		}
	case LocalCleanup:
		c.run(c.local, killCommand(clients))
	}
}

// run executes the kill command and waits for it. Errors are swallowed.
func (c cleaner) run(exec executor.Executor, command string) {
	logrus.Debugf("Cleanup: %q using %s", command, exec.Name())
	handle, err := exec.Execute(command)
	if err != nil {
		logrus.Debugf("Cleanup %q: %v", command, err)
		return
	}
	if !handle.Wait(c.timeout) {
		logrus.Debugf("Cleanup %q did not finish within %s", command, c.timeout)
	}
	// killall exits with non-zero code when there was nothing to kill.
	if exitCode, err := handle.ExitCode(); err == nil && exitCode != 0 {
		logrus.Debugf("Cleanup %q exited with %d", command, exitCode)
	}
	executor.StopCleanAndErase(handle)
}
