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

package executor

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// killTimeout bounds waiting for a killed process group to be reaped.
	killTimeout = 5 * time.Second
	// spawnCheckDelay is how long Execute waits before checking whether the
	// shell managed to start the command.
	spawnCheckDelay = 50 * time.Millisecond
)

// Local provisioning is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	outputDir string
}

// NewLocal returns a Local instance which keeps task output in working directory.
func NewLocal() Local {
	return Local{}
}

// NewLocalWithOutputDir returns a Local instance which keeps task output in outputDir.
func NewLocalWithOutputDir(outputDir string) Local {
	return Local{outputDir: outputDir}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned Task is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	stdoutFile, stderrFile, err := createExecutorOutputFiles(l.outputDir, command, "local")
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Starting %q locally", command)

	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile
	// It is important to set additional Process Group ID for parent process and his children
	// to have ability to kill all the children processes.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		removeOutputFiles(stdoutFile, stderrFile)
		return nil, errors.Wrapf(err, "command %q start failed", command)
	}

	logrus.Debugf("Started %q with pid %d. Output in %q", command, cmd.Process.Pid, stdoutFile.Name())

	handle := &localTaskHandle{
		command:        command,
		pid:            cmd.Process.Pid,
		stdoutFile:     stdoutFile,
		stderrFile:     stderrFile,
		waitEndChannel: make(chan struct{}),
	}

	// Wait for local task in goroutine.
	go func() {
		// Wait() error is irrelevant here, the process state is always checked below.
		cmd.Wait()

		status := cmd.ProcessState.Sys().(syscall.WaitStatus)
		exitCode := status.ExitStatus()
		if status.Signaled() {
			// Show what signal caused the termination.
			exitCode = -int(status.Signal())
		}

		handle.mutex.Lock()
		handle.exitCode = &exitCode
		handle.mutex.Unlock()

		logrus.Debugf("Ended %q (pid %d) with exit code %d", command, handle.pid, exitCode)
		close(handle.waitEndChannel)
	}()

	register(handle)

	time.Sleep(spawnCheckDelay)
	return checkIfProcessFailedToExecute(command, l.Name(), handle)
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	command    string
	pid        int
	stdoutFile *os.File
	stderrFile *os.File

	mutex    sync.Mutex
	exitCode *int

	// waitEndChannel is closed when process ends and exit code is available.
	waitEndChannel chan struct{}
}

func (t *localTaskHandle) isTerminated() bool {
	select {
	case <-t.waitEndChannel:
		return true
	default:
		return false
	}
}

// Stop kills the whole process group of the task and waits for its termination.
func (t *localTaskHandle) Stop() error {
	if t.isTerminated() {
		return nil
	}

	logrus.Debugf("Sending SIGKILL to %q (pgid %d)", t.command, t.pid)
	if err := syscall.Kill(-t.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot kill process group of %q", t.command)
	}

	if !t.Wait(killTimeout) {
		return errors.Errorf("task %q (pid %d) did not stop within %s", t.command, t.pid, killTimeout)
	}
	return nil
}

// Signal delivers sig to the process group of the task.
func (t *localTaskHandle) Signal(sig syscall.Signal) error {
	if t.isTerminated() {
		return errors.Errorf("cannot signal %q: task already terminated", t.command)
	}
	if err := syscall.Kill(-t.pid, sig); err != nil {
		return errors.Wrapf(err, "cannot deliver %s to %q", sig, t.command)
	}
	return nil
}

// Status returns a state of the task.
func (t *localTaskHandle) Status() TaskState {
	if t.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns the exit code of a terminated task.
func (t *localTaskHandle) ExitCode() (int, error) {
	if !t.isTerminated() {
		return -1, errors.Errorf("task %q is not terminated", t.command)
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return *t.exitCode, nil
}

// StdoutFile returns a file handle for the stdout file, rewound to its beginning.
func (t *localTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(t.stdoutFile)
}

// StderrFile returns a file handle for the stderr file, rewound to its beginning.
func (t *localTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(t.stderrFile)
}

// Wait blocks until the task terminates or the timeout elapses. Zero timeout means
// no timeout. It returns true if task is terminated.
func (t *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-t.waitEndChannel
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.waitEndChannel:
		return true
	case <-timer.C:
		return false
	}
}

// Clean closes the output files.
func (t *localTaskHandle) Clean() error {
	return closeOutputFiles(t.stdoutFile, t.stderrFile)
}

// EraseOutput removes the output files together with their directory.
func (t *localTaskHandle) EraseOutput() error {
	return removeOutputFiles(t.stdoutFile, t.stderrFile)
}

// Address returns address where task was located.
func (t *localTaskHandle) Address() string {
	return "127.0.0.1"
}

func (t *localTaskHandle) String() string {
	return fmt.Sprintf("Command %q running locally with pid %d", t.command, t.pid)
}
