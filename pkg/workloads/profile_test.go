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

package workloads

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tu-dresden/verticut/pkg/sample"
)

func TestPilafProfile(t *testing.T) {
	Convey("While using Pilaf profile with default config", t, func() {
		profile, err := NewProfile(Pilaf, 32)
		So(err, ShouldBeNil)

		So(profile.Target(), ShouldEqual, Pilaf)
		So(profile.Port(), ShouldEqual, 4000)
		So(profile.Supports(Put), ShouldBeTrue)
		So(profile.Supports(Latency), ShouldBeFalse)

		Convey("Server command should be a timing mode server", func() {
			So(profile.ServerCommand(4000, Put, 64), ShouldEqual, "./dht-test -s 4000 -T")
		})

		Convey("Client command should pass test code and items per client", func() {
			client := profile.ClientCommand("10.0.0.1", 4000, Get, 64)
			So(client.String(), ShouldEqual, "./dht-test -c dht-one.cnf -T -r -t g -P 1000000")
			So(client.Distributed, ShouldBeTrue)
			So(client.LauncherOptions, ShouldResemble, []string{"-bynode"})
		})

		Convey("Samples come from client stream with completion tracking", func() {
			m := profile.Measurement(Put, 64)
			So(m.Source, ShouldEqual, ClientStream)
			So(m.Sentinel, ShouldEqual, sample.PilafSentinel)
			So(m.Filter.Shape, ShouldEqual, sample.Raw)
			So(m.Selection, ShouldEqual, -1)
		})

		Convey("Get runs reuse the server filled by put", func() {
			So(profile.ReuseServer(Get), ShouldBeTrue)
			So(profile.ReuseServer(Put), ShouldBeFalse)
			So(ReusesServers(profile), ShouldBeTrue)
		})

		Convey("Stale dht-test servers are killed", func() {
			So(profile.StaleServers(), ShouldResemble, []string{"dht-test"})
			So(profile.StaleClients(), ShouldBeEmpty)
		})
	})
}

func TestPilafIBProfile(t *testing.T) {
	Convey("While using verbs test profile", t, func() {
		profile := NewPilafIB(PilafIBConfig{Path: "/opt/ib-test", Port: 4001, ServerConfig: "srv.cnf", Mode: "r", PullItem: 10})

		So(profile.ServerCommand(4001, Throughput, 8), ShouldEqual, "/opt/ib-test s 4001")
		So(profile.ClientCommand("", 4001, Throughput, 8).String(), ShouldEqual, "/opt/ib-test -c srv.cnf -r -m 8 -t throughput")

		m := profile.Measurement(Throughput, 8)
		So(m.Filter.Shape, ShouldEqual, sample.Tagged)
		So(m.Filter.SizeTag, ShouldEqual, "8B")
		So(m.Filter.Position, ShouldEqual, 10)
		So(m.Sentinel, ShouldBeEmpty)
		So(profile.StaleServers(), ShouldResemble, []string{"ib-test"})
		So(ReusesServers(profile), ShouldBeFalse)
	})
}

func TestEchoProfile(t *testing.T) {
	Convey("While using echo profile", t, func() {
		profile := NewEcho(EchoConfig{ServerPath: "./multi", ClientPath: "./client", Rounds: 10, LogDir: "/tmp/echo", Selection: 1})

		So(profile.Port(), ShouldEqual, 0)
		So(profile.StaleServers(), ShouldResemble, []string{"multi"})
		So(ReusesServers(profile), ShouldBeFalse)
		So(profile.StaleClients(), ShouldResemble, []string{"client"})

		Convey("Throughput runs use distributed clients and phase signals", func() {
			So(profile.ServerCommand(5000, Throughput, 64), ShouldEqual, "./multi -p 5000 -s 64 -r 10")
			client := profile.ClientCommand("192.168.5.25", 5000, Throughput, 64)
			So(client.String(), ShouldEqual, "./client -a 192.168.5.25 -p 5000 -s 64 -r 10")
			So(client.Distributed, ShouldBeTrue)

			m := profile.Measurement(Throughput, 64)
			So(m.Source, ShouldEqual, ServerLog)
			So(m.PhaseSignals, ShouldBeTrue)
			So(m.LogFile, ShouldEqual, "/tmp/echo/echo_thru.log")
			So(m.Selection, ShouldEqual, 1)
			So(m.Filter.Shape, ShouldEqual, sample.Rate)
		})

		Convey("Latency runs use a single client and the latency log", func() {
			So(profile.ServerCommand(5000, Latency, 64), ShouldEqual, "./multi -p 5000 -s 64 -r 10 -L")
			So(profile.ClientCommand("192.168.5.25", 5000, Latency, 64).Distributed, ShouldBeFalse)

			m := profile.Measurement(Latency, 64)
			So(m.Source, ShouldEqual, LatencyLog)
			So(m.LogFile, ShouldEqual, "/tmp/echo/echo_lat.log")
			So(m.PhaseSignals, ShouldBeFalse)
		})

		Convey("Binaries lists server and client once", func() {
			So(Binaries(profile, []TestKind{Throughput, Latency, Put}), ShouldResemble, []string{"./multi", "./client"})
		})
	})

	Convey("Memcached cannot be benchmarked directly", t, func() {
		_, err := NewProfile(Memcached, 32)
		So(err, ShouldNotBeNil)
	})
}

func TestPilafItemsPerClient(t *testing.T) {
	Convey("Items of all clients fill the table memory", t, func() {
		So(PilafConfig{Clients: 400}.Items(), ShouldEqual, 260978)
		So(PilafConfig{Clients: 400, TableMemory: 1 << 30}.Items(), ShouldEqual, 18641)
	})

	Convey("Every client puts at most a million items", t, func() {
		So(PilafConfig{Clients: 40}.Items(), ShouldEqual, 1000000)
		So(PilafConfig{}.Items(), ShouldEqual, 1000000)
	})

	Convey("Explicit number of items wins", t, func() {
		So(PilafConfig{Clients: 400, ItemsPerClient: 500}.Items(), ShouldEqual, 500)
	})
}
