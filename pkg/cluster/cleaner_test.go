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

package cluster

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/executor/mocks"
)

func expectFinishedHandle(handle *mocks.TaskHandle) {
	handle.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
	handle.On("ExitCode").Return(1, nil)
	handle.On("Stop").Return(nil)
	handle.On("Clean").Return(nil)
	handle.On("EraseOutput").Return(nil)
}

func TestCleaner(t *testing.T) {
	hosts := []Host{{Name: "node1", Slots: 1}, {Name: "node2", Slots: 1}}
	launcher := Launcher{Binary: "mpirun", Ranks: 32, Hostfile: "mpiconf"}

	Convey("While using cleaner in launcher mode", t, func() {
		local := new(mocks.Executor)
		handle := new(mocks.TaskHandle)
		local.On("Name").Return("Local Executor")
		expectFinishedHandle(handle)

		local.On("Execute", "killall -9 multi").Return(handle, nil).Once()
		local.On("Execute", "mpirun -n 2 -bynode -hostfile mpiconf killall -9 client").Return(handle, nil).Once()

		NewCleaner(LauncherCleanup, local, launcher, hosts, nil).Clean([]string{"multi"}, []string{"client"})

		Convey("Servers are killed locally and clients through the launcher", func() {
			local.AssertExpectations(t)
			handle.AssertNumberOfCalls(t, "EraseOutput", 2)
		})
	})

	Convey("While using cleaner in ssh mode", t, func() {
		local := new(mocks.Executor)
		remote := new(mocks.Executor)
		handle := new(mocks.TaskHandle)
		local.On("Name").Return("Local Executor")
		remote.On("Name").Return("Remote Executor")
		expectFinishedHandle(handle)

		local.On("Execute", "killall -9 dht-test").Return(handle, nil).Once()
		remote.On("Execute", "killall -9 client").Return(handle, nil).Twice()

		var connected []string
		factory := func(host string) (executor.Executor, error) {
			connected = append(connected, host)
			return remote, nil
		}

		NewCleaner(SSHCleanup, local, launcher, hosts, factory).Clean([]string{"dht-test"}, []string{"client"})

		Convey("Every host is cleaned over its own connection", func() {
			So(connected, ShouldResemble, []string{"node1", "node2"})
			local.AssertExpectations(t)
			remote.AssertExpectations(t)
		})
	})

	Convey("Cleanup failures are swallowed", t, func() {
		local := new(mocks.Executor)
		local.On("Name").Return("Local Executor")
		local.On("Execute", "killall -9 ib-test").Return(nil, errors.New("exit code 127")).Once()
		local.On("Execute", "killall -9 client").Return(nil, errors.New("exit code 127")).Once()

		factoryErr := func(host string) (executor.Executor, error) {
			return nil, errors.New("no route to host")
		}

		So(func() {
			NewCleaner(LocalCleanup, local, launcher, nil, factoryErr).Clean([]string{"ib-test"}, []string{"client"})
			NewCleaner(SSHCleanup, local, launcher, hosts, factoryErr).Clean(nil, []string{"client"})
		}, ShouldNotPanic)
		local.AssertExpectations(t)
	})

	Convey("Cleanup modes can be parsed", t, func() {
		for _, name := range []string{"launcher", "ssh", "local"} {
			mode, err := ParseCleanupMode(name)
			So(err, ShouldBeNil)
			So(mode.String(), ShouldEqual, name)
		}
		_, err := ParseCleanupMode("pdsh")
		So(err, ShouldNotBeNil)
	})
}
