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
	"os"
	"path"

	"github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
)

// NewExperimentID returns random identifier of an experiment.
func NewExperimentID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "cannot generate experiment id")
	}
	return id.String(), nil
}

// CreateExperimentDir creates unique directory for experiment logs and its master log file.
func CreateExperimentDir(uuid, appName string) (experimentDirectory string, logFile *os.File, err error) {
	experimentDirectory = path.Join(os.TempDir(), appName, uuid)
	if err = os.MkdirAll(experimentDirectory, 0777); err != nil {
		return "", nil, errors.Wrapf(err, "cannot create experiment directory %q", experimentDirectory)
	}

	logFile, err = os.OpenFile(path.Join(experimentDirectory, "master.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot create master log in %q", experimentDirectory)
	}
	return experimentDirectory, logFile, nil
}
