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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStopAllTaskHandles(t *testing.T) {
	Convey("Task handles created after registering interrupt handle can be stopped at once", t, func() {
		outputDir, err := ioutil.TempDir("", "clean_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)

		stopAll := RegisterInterruptHandle()
		defer func() {
			globalStopperMutex.Lock()
			globalTaskHandleStopper = nil
			globalStopperMutex.Unlock()
		}()

		l := NewLocalWithOutputDir(outputDir)
		first, err := l.Execute("sleep 100")
		So(err, ShouldBeNil)
		second, err := l.Execute("sleep 100")
		So(err, ShouldBeNil)

		stopAll()

		So(first.Status(), ShouldEqual, TERMINATED)
		So(second.Status(), ShouldEqual, TERMINATED)

		Convey("StopCleanAndErase removes output of a stopped task", func() {
			stdout, err := first.StdoutFile()
			So(err, ShouldBeNil)
			stdout.Close()

			StopCleanAndErase(first)
			_, err = os.Stat(stdout.Name())
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}
