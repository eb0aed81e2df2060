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
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// EnvHost names host reachable over ssh with remote_ssh_* flags. Remote tests are skipped without it.
const EnvHost = "REMOTE_EXECUTOR_TEST_HOST"

func TestRemote(t *testing.T) {
	host := os.Getenv(EnvHost)
	if host == "" {
		SkipConvey("While using Remote executor", t, func() {})
		return
	}

	Convey("While using Remote executor", t, func() {
		outputDir, err := ioutil.TempDir("", "remote_executor")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)

		sshConfig, err := NewSSHConfig(host)
		So(err, ShouldBeNil)
		remote := NewRemoteWithOutputDir(sshConfig, outputDir)

		Convey("Exit code of failed command is available", func() {
			task, err := remote.Execute("sleep 1; exit 3")
			So(err, ShouldBeNil)
			defer StopCleanAndErase(task)

			So(task.Wait(10*time.Second), ShouldBeTrue)
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 3)
		})

		Convey("Output of successful command is available", func() {
			task, err := remote.Execute("echo remote")
			So(err, ShouldBeNil)
			defer StopCleanAndErase(task)

			So(task.Wait(10*time.Second), ShouldBeTrue)
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
			So(strings.TrimSpace(readAll(task)), ShouldEqual, "remote")
			So(task.Address(), ShouldEqual, host)
		})

		Convey("Long running command can be stopped", func() {
			task, err := remote.Execute("sleep 100")
			So(err, ShouldBeNil)
			defer StopCleanAndErase(task)

			So(task.Status(), ShouldEqual, RUNNING)
			So(task.Stop(), ShouldBeNil)
			So(task.Status(), ShouldEqual, TERMINATED)
		})
	})
}
