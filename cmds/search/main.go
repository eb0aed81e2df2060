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
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/experiment"
	"github.com/tu-dresden/verticut/pkg/utils/errutil"
	"github.com/tu-dresden/verticut/pkg/utils/fs"
	"github.com/tu-dresden/verticut/pkg/workloads/imagesearch"
)

func main() {
	conf.SetAppName("search")
	conf.SetHelp("Runs distributed image search workers through the cluster launcher and prints found neighbors.")
	err := conf.ParseFlags()
	if err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(experiment.ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	config, err := imagesearch.ConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		conf.Usage()
		os.Exit(experiment.ExUsage)
	}
	logrus.Debugf("Search config: %s", config)

	stopAll := executor.RegisterInterruptHandle()
	defer stopAll()

	exitCode, err := search(executor.NewLocal(), config, os.Stdout)
	errutil.CheckWithContext(err, "Cannot run search")
	if exitCode != 0 {
		logrus.Errorf("Search exited with %d", exitCode)
		os.Exit(1)
	}
}

// search runs the search to completion and copies its output to out.
// Only lines printed by search workers reach out.
func search(exec executor.Executor, config imagesearch.Config, out io.Writer) (int, error) {
	handle, err := imagesearch.New(exec, config).Launch()
	if err != nil {
		return 0, err
	}
	defer executor.StopCleanAndErase(handle)
	handle.Wait(0)

	stdout, err := handle.StdoutFile()
	if err != nil {
		return 0, err
	}
	stdout.Close()
	lines, err := fs.ReadLines(stdout.Name())
	if err != nil {
		return 0, err
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return handle.ExitCode()
}
