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

package driver

import (
	"fmt"
	"os/exec"

	"github.com/pkg/errors"
)

// SpawnError is returned when a server, a client group or the cluster launcher
// could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot spawn %q: %v", e.Command, e.Err)
}

// Cause returns underlying error.
func (e *SpawnError) Cause() error {
	return e.Err
}

// IsSpawnFailure returns true when err was caused by SpawnError.
func IsSpawnFailure(err error) bool {
	var spawnErr *SpawnError
	return errors.As(err, &spawnErr)
}

// ValidateBinaries checks that all binaries exist and are executable.
func ValidateBinaries(binaries ...string) error {
	for _, binary := range binaries {
		if _, err := exec.LookPath(binary); err != nil {
			return &SpawnError{Command: binary, Err: err}
		}
	}
	return nil
}
