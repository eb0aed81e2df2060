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

package experiment

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/metadata"
	"github.com/tu-dresden/verticut/pkg/utils/errutil"
	"github.com/tu-dresden/verticut/pkg/visualization"
)

// ExUsage is exit code of invalid command line usage.
const ExUsage = 64

var (
	// dumpConfigFlag name includes dash to exclude it from dumping.
	dumpConfigFlag = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)

	// dumpConfigExperimentIDFlag name includes dash to exclude it from dumping.
	dumpConfigExperimentIDFlag = conf.NewStringFlag("config-dump-experiment-id", "Dump configuration based on experiment ID.", "")

	// showResultsExperimentIDFlag name includes dash to exclude it from dumping.
	showResultsExperimentIDFlag = conf.NewStringFlag("results-experiment-id", "Print results recorded by experiment with given ID.", "")
)

// Configure handles configuration parsing, generation and restoration based on config-* flags.
// Note: exits if configuration generation or results of previous experiment were requested.
func Configure() {
	err := conf.ParseFlags()
	if err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		previousExperimentID := dumpConfigExperimentIDFlag.Value()
		if previousExperimentID != "" {
			flags, err := previousFlags(previousExperimentID)
			errutil.Check(err)
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(0)
	}

	if experimentID := showResultsExperimentIDFlag.Value(); experimentID != "" {
		recorder, err := metadata.NewDefault(experimentID)
		errutil.Check(err)
		errutil.Check(visualization.DrawResults(os.Stdout, experimentID, recorder))
		os.Exit(0)
	}
}

// previousFlags returns flags recorded by experiment with given id.
func previousFlags(experimentID string) (map[string]string, error) {
	recorder, err := metadata.NewDefault(experimentID)
	if err != nil {
		return nil, err
	}
	maps, err := recorder.GetByKind(metadata.TypeFlags)
	if err != nil {
		return nil, err
	}
	flags := map[string]string{}
	for _, m := range maps {
		for key, value := range m {
			flags[key] = value
		}
	}
	return flags, nil
}
