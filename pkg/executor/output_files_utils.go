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
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// getBinaryNameFromCommand returns base name of the first word of the command.
func getBinaryNameFromCommand(command string) (string, error) {
	fields := strings.Fields(command)
	for len(fields) > 0 && fields[0] == "exec" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return "", errors.Errorf("failed to extract command name from %q", command)
	}
	_, name := path.Split(fields[0])
	return name, nil
}

// createExecutorOutputFiles creates unique directory inside outputDir (working
// directory when empty) with stdout and stderr files for the command.
func createExecutorOutputFiles(outputDir, command, prefix string) (stdout, stderr *os.File, err error) {
	if len(command) == 0 {
		return nil, nil, errors.New("empty command string")
	}

	commandName, err := getBinaryNameFromCommand(command)
	if err != nil {
		return nil, nil, err
	}

	if outputDir == "" {
		outputDir, err = os.Getwd()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to get working directory")
		}
	}

	directory, err := ioutil.TempDir(outputDir, prefix+"_"+commandName+"_")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create output directory for %q", commandName)
	}
	if err = os.Chmod(directory, 0755); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to set privileges for dir %q", directory)
	}

	stdoutFileName := path.Join(directory, "stdout")
	stdout, err = os.Create(stdoutFileName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %q", stdoutFileName)
	}

	stderrFileName := path.Join(directory, "stderr")
	stderr, err = os.Create(stderrFileName)
	if err != nil {
		stdout.Close()
		os.RemoveAll(directory)
		return nil, nil, errors.Wrapf(err, "failed to create %q", stderrFileName)
	}

	return stdout, stderr, nil
}

// removeOutputFiles removes both output files and the directory holding them.
func removeOutputFiles(stdout, stderr *os.File) error {
	directory := path.Dir(stdout.Name())
	if err := os.RemoveAll(directory); err != nil {
		return errors.Wrapf(err, "could not remove output directory %q", directory)
	}
	return nil
}

// openOutputFile opens a fresh read handle on the given output file.
func openOutputFile(file *os.File) (*os.File, error) {
	if file == nil {
		return nil, errors.New("output file is not available")
	}
	readFile, err := os.Open(file.Name())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", file.Name())
	}
	return readFile, nil
}

// closeOutputFiles closes both output files. Files already closed are ignored.
func closeOutputFiles(stdout, stderr *os.File) error {
	var firstErr error
	for _, file := range []*os.File{stdout, stderr} {
		if file == nil {
			continue
		}
		if err := file.Close(); err != nil && firstErr == nil && !isClosedError(err) {
			firstErr = errors.Wrapf(err, "cannot close %q", file.Name())
		}
	}
	return firstErr
}

func isClosedError(err error) bool {
	pathErr, ok := err.(*os.PathError)
	return ok && pathErr.Err == os.ErrClosed
}
