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
	"io/ioutil"
	"os"
	"path"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLauncher(t *testing.T) {
	Convey("While using cluster launcher", t, func() {
		launcher := Launcher{Binary: "mpirun", Ranks: 40, Hostfile: "mpiconf"}

		Convey("Command should start binary on all ranks", func() {
			So(launcher.WithOptions("-bynode").Command("./dht-test", "-c", "dht-one.cnf", "-T"),
				ShouldEqual, "mpirun -n 40 -bynode -hostfile mpiconf ./dht-test -c dht-one.cnf -T")
		})

		Convey("Options and ranks do not leak into the original launcher", func() {
			other := launcher.WithOptions("--mca", "btl", "tcp,self").WithRanks(5)
			So(other.Command("./client"), ShouldEqual, "mpirun -n 5 --mca btl tcp,self -hostfile mpiconf ./client")
			So(launcher.Command("./client"), ShouldEqual, "mpirun -n 40 -hostfile mpiconf ./client")
		})

		Convey("Hostfile is optional", func() {
			local := Launcher{Binary: "mpirun.openmpi", Ranks: 4}
			So(local.Args("distributed-image-search", "cfg"), ShouldResemble,
				[]string{"mpirun.openmpi", "-n", "4", "distributed-image-search", "cfg"})
		})
	})

	Convey("Default launcher is configured from flags", t, func() {
		launcher := DefaultLauncher()
		So(launcher.Binary, ShouldEqual, "mpirun")
		So(launcher.Ranks, ShouldEqual, 32)
		So(launcher.Hostfile, ShouldEqual, "mpiconf")
	})
}

func TestHostfile(t *testing.T) {
	Convey("Hostfile lines are parsed", t, func() {
		hosts, err := ParseHostfile([]string{
			"# cluster",
			"beaker-21 slots=4",
			"",
			"beaker-22   # spare",
			"beaker-23 slots=2 max_slots=8",
		})
		So(err, ShouldBeNil)
		So(hosts, ShouldResemble, []Host{
			{Name: "beaker-21", Slots: 4},
			{Name: "beaker-22", Slots: 1},
			{Name: "beaker-23", Slots: 2},
		})
		So(HostNames(hosts), ShouldResemble, []string{"beaker-21", "beaker-22", "beaker-23"})
	})

	Convey("Invalid slot count is an error", t, func() {
		_, err := ParseHostfile([]string{"beaker-21 slots=zero"})
		So(err, ShouldNotBeNil)
	})

	Convey("Hostfile is read from disk", t, func() {
		dir, err := ioutil.TempDir("", "hostfile")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		file := path.Join(dir, "mpiconf")
		So(ioutil.WriteFile(file, []byte("node1\nnode2 slots=8\n"), 0644), ShouldBeNil)

		hosts, err := ReadHostfile(file)
		So(err, ShouldBeNil)
		So(hosts, ShouldHaveLength, 2)

		_, err = ReadHostfile(path.Join(dir, "missing"))
		So(err, ShouldNotBeNil)
	})
}
