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
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Exit codes returned by sh when the command could not be run at all.
const (
	exitCodeNotExecutable = 126
	exitCodeNotFound      = 127
)

// checkIfProcessFailedToExecute should be checked in the end of Execute(cmd) method.
// It returns nil handle and error only when the command could not be run at all.
// Task which is still running or already ended with any other exit code is returned
// to the caller, which decides what its output means.
// Output files of a dropped handle are closed and kept on disk for inspection.
//
// Commands usually fail because wrong parameters or binary that should be executed is not installed properly.
func checkIfProcessFailedToExecute(command string, executorName string, handle TaskHandle) (TaskHandle, error) {
	if handle.Status() != TERMINATED {
		return handle, nil
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		LogUnsucessfulExecution(command, executorName, handle)
		dropHandle(handle)
		return nil, errors.Wrapf(err, "task %q launched on %q failed, cannot get exit code", command, executorName)
	}

	switch exitCode {
	case 0:
		logrus.Debugf("task %q launched on %q has ended successfully", command, executorName)
	case exitCodeNotExecutable, exitCodeNotFound:
		LogUnsucessfulExecution(command, executorName, handle)
		dropHandle(handle)
		return nil, errors.Errorf("task %q launched on %q could not be started: exit code %d", command, executorName, exitCode)
	default:
		logrus.Debugf("task %q launched on %q has already ended with exit code %d", command, executorName, exitCode)
	}
	return handle, nil
}

func dropHandle(handle TaskHandle) {
	if err := handle.Clean(); err != nil {
		logrus.Debugf("cannot close output of dropped task: %v", err)
	}
}
