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

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/workloads/imagesearch"
)

// fakeLauncher writes launcher stand-in printing neighbors regardless of its arguments.
func fakeLauncher(t *testing.T, dir string, exitCode string) string {
	launcher := path.Join(dir, "fake-mpirun")
	script := "#!/bin/sh\necho q:0\necho a:1.5\nexit " + exitCode + "\n"
	require.NoError(t, ioutil.WriteFile(launcher, []byte(script), 0755))
	return launcher
}

func TestSearchPrintsOnlyNeighbors(t *testing.T) {
	dir, err := ioutil.TempDir("", "search")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	config := imagesearch.DefaultConfig()
	config.LauncherPath = fakeLauncher(t, dir, "0")
	out := &bytes.Buffer{}

	exitCode, err := search(executor.NewLocalWithOutputDir(dir), config, out)
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "q:0\na:1.5\n", out.String())
}

func TestSearchReturnsExitCodeOfWorkers(t *testing.T) {
	dir, err := ioutil.TempDir("", "search")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	config := imagesearch.DefaultConfig()
	config.LauncherPath = fakeLauncher(t, dir, "2")
	out := &bytes.Buffer{}

	exitCode, err := search(executor.NewLocalWithOutputDir(dir), config, out)
	require.NoError(t, err)
	assert.Equal(t, 2, exitCode)
	assert.Equal(t, "q:0\na:1.5\n", out.String())
}
