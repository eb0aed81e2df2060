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

	"github.com/tu-dresden/verticut/pkg/accuracy"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/experiment"
	"github.com/tu-dresden/verticut/pkg/experiment/logger"
	"github.com/tu-dresden/verticut/pkg/metadata"
	"github.com/tu-dresden/verticut/pkg/utils/errutil"
)

var appName = path.Base(os.Args[0])

func main() {
	experimentStart := time.Now()

	conf.SetAppName(appName)
	conf.SetHelp("Compares approximate and exact distributed image search of random queries.")
	experiment.Configure()

	uid, err := experiment.NewExperimentID()
	errutil.Check(err)
	experimentDirectory := logger.Initialize(appName, uid)

	stopAll := executor.RegisterInterruptHandle()
	defer stopAll()

	recorder, err := metadata.NewDefault(uid)
	errutil.CheckWithContext(err, "Cannot connect to metadata database")
	err = metadata.RecordRuntimeEnv(recorder, experimentStart)
	errutil.CheckWithContext(err, "Cannot save runtime environment in metadata database")

	config, err := accuracy.ConfigFromFlags()
	errutil.CheckWithContext(err, "Invalid accuracy configuration")

	runner := accuracy.NewRunner(executor.NewLocalWithOutputDir(experimentDirectory), config, os.Stdout)
	averages, err := runner.Run()
	errutil.CheckWithContext(err, "Accuracy comparison aborted")

	for _, average := range averages {
		err := recorder.RecordMap(accuracy.Metadata(average), metadata.TypeResult)
		errutil.CheckWithContext(err, "Cannot record accuracy")
	}
}
