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

package metadata

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/conf"
)

// RecordRuntimeEnv stores flags, environment, host and start time of the experiment.
func RecordRuntimeEnv(metadata Metadata, experimentStart time.Time) error {
	if err := metadata.RecordMap(conf.GetFlags(), TypeFlags); err != nil {
		return err
	}

	if err := recordEnv(metadata, conf.EnvPrefix); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}
	err = metadata.RecordMap(map[string]string{"time": experimentStart.Format(time.RFC822Z), "host": hostname}, TypeEmpty)
	if err != nil {
		return err
	}

	return metadata.RecordMap(platformMetrics(), TypePlatform)
}

// recordEnv adds all OS Environment variables that starts with prefix.
func recordEnv(metadata Metadata, prefix string) error {
	envMetadata := map[string]string{}
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			fields := strings.SplitN(env, "=", 2)
			envMetadata[fields[0]] = fields[1]
		}
	}
	return metadata.RecordMap(envMetadata, TypeEnviron)
}

func platformMetrics() map[string]string {
	return map[string]string{
		"cpus":       fmt.Sprint(runtime.NumCPU()),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
	}
}
