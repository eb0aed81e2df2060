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

package accuracy

import (
	"bytes"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/executor/mocks"
	"github.com/tu-dresden/verticut/pkg/workloads/imagesearch"
)

// searchHandle returns finished search task printing lines.
func searchHandle(t *testing.T, dir, name string, lines ...string) *mocks.TaskHandle {
	output := path.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(output, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	handle := new(mocks.TaskHandle)
	handle.On("Wait", time.Duration(0)).Return(true)
	handle.On("ExitCode").Return(0, nil)
	handle.On("StdoutFile").Return(func() *os.File {
		f, err := os.Open(output)
		require.NoError(t, err)
		return f
	}, nil)
	handle.On("Stop").Return(nil)
	handle.On("Clean").Return(nil)
	handle.On("EraseOutput").Return(nil)
	return handle
}

func isApproximate(command string) bool {
	return strings.Contains(command, " -a")
}

func testConfig() Config {
	search := imagesearch.DefaultConfig()
	search.LauncherPath = "mpirun"
	search.Path = "search"
	return Config{Ks: []int{3}, ApproxFactor: 20, ImageTotal: 1000, Iterations: 2, Search: search}
}

func TestRunnerAverages(t *testing.T) {
	dir, err := ioutil.TempDir("", "accuracy")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	approximate := searchHandle(t, dir, "approximate", "query 7", "q:1", "x:15", "y:20", "z:10", "took 2s")
	exact := searchHandle(t, dir, "exact", "query 7", "a:10", "b:10", "c:15", "took 3s")

	exec := new(mocks.Executor)
	exec.On("Execute", mock.MatchedBy(isApproximate)).Return(approximate, nil)
	exec.On("Execute", mock.MatchedBy(func(command string) bool { return !isApproximate(command) })).Return(exact, nil)

	out := &bytes.Buffer{}
	runner := NewRunner(exec, testConfig(), out)
	queries := 0
	runner.Query = func() int { queries++; return 7 }

	averages, err := runner.Run()
	require.NoError(t, err)
	require.Len(t, averages, 1)

	assert.Equal(t, 2, queries)
	assert.Equal(t, 3, averages[0].K)
	assert.Equal(t, 2, averages[0].Samples)
	assert.InDelta(t, 2.0/3.0, averages[0].Ratio, 1e-9)
	assert.InDelta(t, 15.0, averages[0].ApproximateMean, 1e-9)
	assert.InDelta(t, 11.67, averages[0].ExactMean, 0.01)

	assert.Contains(t, out.String(), "0 th iteration:")
	assert.Contains(t, out.String(), "1 th iteration:")
	assert.Contains(t, out.String(), "0.6667")

	exec.AssertNumberOfCalls(t, "Execute", 4)
	exec.AssertCalled(t, "Execute", "mpirun -n 4 search ../config/pilaf.cnf 1000 128 32 60 pilaf 0 -a -q 7")
	exec.AssertCalled(t, "Execute", "mpirun -n 4 search ../config/pilaf.cnf 1000 128 32 3 pilaf 0 -q 7")
	approximate.AssertNumberOfCalls(t, "Stop", 2)
	exact.AssertNumberOfCalls(t, "Stop", 2)
}

func TestRunnerDiscardsMismatchedWindows(t *testing.T) {
	dir, err := ioutil.TempDir("", "accuracy")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	approximate := searchHandle(t, dir, "approximate", "x:15", "y:20")
	exact := searchHandle(t, dir, "exact", "a:10", "b:10", "c:15")

	exec := new(mocks.Executor)
	exec.On("Execute", mock.MatchedBy(isApproximate)).Return(approximate, nil)
	exec.On("Execute", mock.MatchedBy(func(command string) bool { return !isApproximate(command) })).Return(exact, nil)

	averages, err := NewRunner(exec, testConfig(), &bytes.Buffer{}).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, averages[0].Samples)
	assert.Equal(t, 0.0, averages[0].Ratio)
}

func TestRunnerAbortsWhenSearchCannotStart(t *testing.T) {
	launcher := new(mocks.Launcher)
	launcher.On("Launch").Return(nil, assert.AnError).Once()

	runner := NewRunner(new(mocks.Executor), testConfig(), &bytes.Buffer{})
	var searches []imagesearch.Config
	runner.Search = func(config imagesearch.Config) executor.Launcher {
		searches = append(searches, config)
		return launcher
	}

	_, err := runner.Run()
	assert.Error(t, err)
	launcher.AssertExpectations(t)
	require.Len(t, searches, 1)
	assert.True(t, searches[0].Approximate)
	assert.Equal(t, 60, searches[0].K)
	assert.Equal(t, 1000, searches[0].ImageCount)
}
