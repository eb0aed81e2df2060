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
	"os"
	"path"
	"time"

	"github.com/tu-dresden/verticut/pkg/cluster"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/driver"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/experiment"
	"github.com/tu-dresden/verticut/pkg/experiment/logger"
	"github.com/tu-dresden/verticut/pkg/metadata"
	"github.com/tu-dresden/verticut/pkg/utils/errutil"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

var (
	appName               = path.Base(os.Args[0])
	serverAddressFlag     = conf.NewStringFlag("server_address", "Address of the benchmarked server passed to clients", "127.0.0.1")
	latencyClientHostFlag = conf.NewStringFlag("latency_client_host", "Host running the single latency client, local when empty", "")
)

func main() {
	experimentStart := time.Now()

	conf.SetAppName(appName)
	conf.SetHelp("Runs throughput and latency sweeps of Pilaf, raw InfiniBand and TCP echo servers. Result rows are printed to stdout.")
	experiment.Configure()

	uid, err := experiment.NewExperimentID()
	errutil.Check(err)
	experimentDirectory := logger.Initialize(appName, uid)

	// Processes started below are killed on interrupt.
	stopAll := executor.RegisterInterruptHandle()
	defer stopAll()

	recorder, err := metadata.NewDefault(uid)
	errutil.CheckWithContext(err, "Cannot connect to metadata database")
	err = metadata.RecordRuntimeEnv(recorder, experimentStart)
	errutil.CheckWithContext(err, "Cannot save runtime environment in metadata database")

	config, err := experiment.ConfigFromFlags()
	errutil.CheckWithContext(err, "Invalid sweep")

	local := executor.NewLocalWithOutputDir(experimentDirectory)
	launcher := cluster.DefaultLauncher()
	cleaner, err := cluster.NewCleanerFromFlags(local, launcher, experimentDirectory)
	errutil.CheckWithContext(err, "Cannot create stale process cleaner")
	clientExecutor, err := executor.CreateExecutor(latencyClientHostFlag.Value(), experimentDirectory)
	errutil.CheckWithContext(err, "Cannot create latency client executor")

	var drivers []*driver.Driver
	for _, target := range config.Targets {
		profile, err := workloads.NewProfile(target, launcher.Ranks)
		errutil.CheckWithContext(err, "Invalid target system")

		drivers = append(drivers, driver.New(driver.Config{
			Executor:       local,
			ClientExecutor: clientExecutor,
			Cleaner:        cleaner,
			Launcher:       launcher,
			Profile:        profile,
			Durations:      driver.DefaultDurations(),
			ServerAddress:  serverAddressFlag.Value(),
		}))
	}
	runner := experiment.NewDrivers(drivers...)

	binaries := append(runner.Binaries(config.Kinds), launcher.Binary)
	errutil.CheckWithContext(driver.ValidateBinaries(binaries...), "Cannot run sweep")

	report, err := experiment.NewOrchestrator(config, runner, os.Stdout, recorder).Run()
	errutil.CheckWithContext(err, "Sweep aborted")

	report.Summary(os.Stdout)
}
