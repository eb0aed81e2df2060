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
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/utils/fs"
)

var outputLinesCountFlag = conf.NewIntFlag(
	"output_lines_count",
	"Number of lines of stdout and stderr printed when a task ends prematurely",
	5,
)

// OutputLinesCount returns number of output lines printed for failed tasks.
func OutputLinesCount() int {
	return outputLinesCountFlag.Value()
}

// LogSuccessfulExecution is helper function for logging standard output and standard error
// file names
func LogSuccessfulExecution(whatWasExecuted string, whereWasExecuted string, handle TaskHandle) {
	id := rand.Intn(9999)

	stdoutFileName, stderrFileName := outputFileNames(whatWasExecuted, whereWasExecuted, handle)

	logrus.Debugf("%4d Process %q on %q on %q has ended", id, whatWasExecuted, whereWasExecuted, handle.Address())
	logrus.Debugf("%4d Stdout stored in %q", id, stdoutFileName)
	logrus.Debugf("%4d Stderr stored in %q", id, stderrFileName)

	exitCode, err := handle.ExitCode()
	if err != nil {
		logrus.Debugf("%4d Could not read exit code: %v", id, err)
	} else {
		logrus.Debugf("%4d Exit code: %d", id, exitCode)
	}
}

// LogUnsucessfulExecution is helper function for logging standard output and standard error
// of task handles
func LogUnsucessfulExecution(whatWasExecuted string, whereWasExecuted string, handle TaskHandle) {
	stdoutFileName, stderrFileName := outputFileNames(whatWasExecuted, whereWasExecuted, handle)

	lineCount := outputLinesCountFlag.Value()
	stdoutTail, err := fs.ReadTail(stdoutFileName, lineCount)
	if err != nil {
		stdoutTail = []string{err.Error()}
	}
	stderrTail, err := fs.ReadTail(stderrFileName, lineCount)
	if err != nil {
		stderrTail = []string{err.Error()}
	}

	id := rand.Intn(9999)
	logrus.Errorf("%4d Command %q might have ended prematurely on %q on address %q", id, whatWasExecuted, whereWasExecuted, handle.Address())
	logrus.Errorf("%4d Stdout stored in %q", id, stdoutFileName)
	logrus.Errorf("%4d Stderr stored in %q", id, stderrFileName)
	logrus.Errorf("%4d Last %d lines of stdout", id, lineCount)
	ErrorLogLines(stdoutTail, id)
	logrus.Errorf("%4d Last %d lines of stderr", id, lineCount)
	ErrorLogLines(stderrTail, id)

	exitCode, err := handle.ExitCode()
	if err != nil {
		logrus.Errorf("%4d Could not read exit code: %v", id, err)
	} else {
		logrus.Errorf("%4d Exit code: %d", id, exitCode)
	}
}

// ErrorLogLines prints each line in a separate log.Errorf("%4d <line>", logID, line).
// Rationale behind this function is fact, that logrus does not support multi-line logs.
func ErrorLogLines(lines []string, logID int) {
	for _, line := range lines {
		logrus.Errorf("%4d %s", logID, line)
	}
}

func outputFileNames(whatWasExecuted, whereWasExecuted string, handle TaskHandle) (stdoutFileName, stderrFileName string) {
	stdoutFile, err := handle.StdoutFile()
	if err != nil {
		logrus.Errorf("Could not read stdout filename for command %s on %s", whatWasExecuted, whereWasExecuted)
		stdoutFileName = fmt.Sprintf("%v", err)
	} else {
		stdoutFileName = stdoutFile.Name()
		stdoutFile.Close()
	}

	stderrFile, err := handle.StderrFile()
	if err != nil {
		logrus.Errorf("Could not read stderr filename for command %s on %s", whatWasExecuted, whereWasExecuted)
		stderrFileName = fmt.Sprintf("%v", err)
	} else {
		stderrFileName = stderrFile.Name()
		stderrFile.Close()
	}
	return stdoutFileName, stderrFileName
}
