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
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

var sshSignals = map[syscall.Signal]ssh.Signal{
	syscall.SIGABRT: ssh.SIGABRT,
	syscall.SIGALRM: ssh.SIGALRM,
	syscall.SIGHUP:  ssh.SIGHUP,
	syscall.SIGINT:  ssh.SIGINT,
	syscall.SIGKILL: ssh.SIGKILL,
	syscall.SIGPIPE: ssh.SIGPIPE,
	syscall.SIGQUIT: ssh.SIGQUIT,
	syscall.SIGTERM: ssh.SIGTERM,
	syscall.SIGUSR1: ssh.SIGUSR1,
	syscall.SIGUSR2: ssh.SIGUSR2,
}

// Remote provisioning is responsible for providing the execution environment
// on remote machine via ssh.
type Remote struct {
	sshConfig *SSHConfig
	outputDir string
}

// NewRemote returns a Remote instance.
func NewRemote(sshConfig *SSHConfig) Remote {
	return Remote{sshConfig: sshConfig}
}

// NewRemoteWithOutputDir returns a Remote instance which keeps task output locally in outputDir.
func NewRemoteWithOutputDir(sshConfig *SSHConfig, outputDir string) Remote {
	return Remote{sshConfig: sshConfig, outputDir: outputDir}
}

// Name returns user-friendly name of executor.
func (remote Remote) Name() string {
	return "Remote Executor"
}

// Execute runs the command given as input on remote host.
// Output of the command is streamed to local files.
func (remote Remote) Execute(command string) (TaskHandle, error) {
	address := fmt.Sprintf("%s:%d", remote.sshConfig.Host, remote.sshConfig.Port)
	connection, err := ssh.Dial("tcp", address, remote.sshConfig.ClientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %q", address)
	}

	session, err := connection.NewSession()
	if err != nil {
		connection.Close()
		return nil, errors.Wrapf(err, "cannot open session on %q", address)
	}

	// Pseudo terminal makes the remote process die together with the session.
	terminal := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm", 80, 40, terminal); err != nil {
		session.Close()
		connection.Close()
		return nil, errors.Wrapf(err, "cannot request pty on %q", address)
	}

	stdoutFile, stderrFile, err := createExecutorOutputFiles(remote.outputDir, command, "remote")
	if err != nil {
		session.Close()
		connection.Close()
		return nil, err
	}
	session.Stdout = stdoutFile
	session.Stderr = stderrFile

	logrus.Debugf("Starting %q on %q", command, remote.sshConfig.Host)
	if err := session.Start(command); err != nil {
		session.Close()
		connection.Close()
		removeOutputFiles(stdoutFile, stderrFile)
		return nil, errors.Wrapf(err, "command %q start on %q failed", command, address)
	}

	handle := &remoteTaskHandle{
		command:        command,
		host:           remote.sshConfig.Host,
		session:        session,
		connection:     connection,
		stdoutFile:     stdoutFile,
		stderrFile:     stderrFile,
		waitEndChannel: make(chan struct{}),
	}

	go func() {
		exitCode := 0
		if err := session.Wait(); err != nil {
			switch waitErr := err.(type) {
			case *ssh.ExitError:
				exitCode = waitErr.ExitStatus()
				if waitErr.Signal() != "" {
					exitCode = -1
				}
			default:
				logrus.Debugf("Session for %q on %q ended without exit status: %v", command, handle.host, err)
				exitCode = -1
			}
		}

		handle.mutex.Lock()
		handle.exitCode = &exitCode
		handle.mutex.Unlock()

		session.Close()
		connection.Close()
		logrus.Debugf("Ended %q on %q with exit code %d", command, handle.host, exitCode)
		close(handle.waitEndChannel)
	}()

	register(handle)

	time.Sleep(spawnCheckDelay)
	return checkIfProcessFailedToExecute(command, remote.Name(), handle)
}

// remoteTaskHandle implements TaskHandle interface.
type remoteTaskHandle struct {
	command    string
	host       string
	session    *ssh.Session
	connection *ssh.Client
	stdoutFile *os.File
	stderrFile *os.File

	mutex    sync.Mutex
	exitCode *int

	waitEndChannel chan struct{}
}

func (t *remoteTaskHandle) isTerminated() bool {
	select {
	case <-t.waitEndChannel:
		return true
	default:
		return false
	}
}

// Stop terminates the remote task.
func (t *remoteTaskHandle) Stop() error {
	if t.isTerminated() {
		return nil
	}

	if err := t.session.Signal(ssh.SIGKILL); err != nil {
		logrus.Debugf("Cannot send SIGKILL to %q on %q: %v", t.command, t.host, err)
	}
	// Closing the session hangs up the pseudo terminal even when sshd ignores signal requests.
	t.session.Close()

	if !t.Wait(killTimeout) {
		t.connection.Close()
		if !t.Wait(killTimeout) {
			return errors.Errorf("task %q on %q did not stop within %s", t.command, t.host, 2*killTimeout)
		}
	}
	return nil
}

// Signal delivers sig to the remote task.
func (t *remoteTaskHandle) Signal(sig syscall.Signal) error {
	if t.isTerminated() {
		return errors.Errorf("cannot signal %q on %q: task already terminated", t.command, t.host)
	}
	sshSignal, ok := sshSignals[sig]
	if !ok {
		return errors.Errorf("signal %s cannot be delivered over ssh", sig)
	}
	if err := t.session.Signal(sshSignal); err != nil {
		return errors.Wrapf(err, "cannot deliver %s to %q on %q", sig, t.command, t.host)
	}
	return nil
}

// Status returns a state of the task.
func (t *remoteTaskHandle) Status() TaskState {
	if t.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns the exit code of a terminated task.
func (t *remoteTaskHandle) ExitCode() (int, error) {
	if !t.isTerminated() {
		return -1, errors.Errorf("task %q on %q is not terminated", t.command, t.host)
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return *t.exitCode, nil
}

// StdoutFile returns a file handle for the local copy of stdout.
func (t *remoteTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(t.stdoutFile)
}

// StderrFile returns a file handle for the local copy of stderr.
func (t *remoteTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(t.stderrFile)
}

// Wait blocks until the task terminates or the timeout elapses. Zero timeout means
// no timeout. It returns true if task is terminated.
func (t *remoteTaskHandle) Wait(timeout time.Duration) bool {
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
func (t *remoteTaskHandle) Clean() error {
	return closeOutputFiles(t.stdoutFile, t.stderrFile)
}

// EraseOutput removes the output files together with their directory.
func (t *remoteTaskHandle) EraseOutput() error {
	return removeOutputFiles(t.stdoutFile, t.stderrFile)
}

// Address returns address where task was located.
func (t *remoteTaskHandle) Address() string {
	return t.host
}

func (t *remoteTaskHandle) String() string {
	return fmt.Sprintf("Command %q running remotely on %q", t.command, t.host)
}
