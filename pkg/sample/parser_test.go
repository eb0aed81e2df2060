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

package sample

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("While parsing tagged server log lines", t, func() {
		filter := NewFilter(Tagged, 40)
		So(filter.SizeTag, ShouldEqual, "40B")

		Convey("Line at the configured position is a sample", func() {
			s, ok := Parse("10 40B 12345.6", filter.WithPosition(10))
			So(ok, ShouldBeTrue)
			So(s.Value, ShouldEqual, 12345.6)
			So(s.PayloadSize, ShouldEqual, 40)
			So(s.Rank, ShouldEqual, 10)
		})

		Convey("Line at a different position is not a sample", func() {
			_, ok := Parse("10 40B 12345.6", filter.WithPosition(5))
			So(ok, ShouldBeFalse)
		})

		Convey("Without positional filter any position is accepted", func() {
			_, ok := Parse("3 40B 1.5", filter)
			So(ok, ShouldBeTrue)
		})

		Convey("Mismatching size tag is skipped", func() {
			_, ok := Parse("10 64B 12345.6", filter.WithPosition(10))
			So(ok, ShouldBeFalse)
		})

		Convey("Free-form text is not a sample", func() {
			_, ok := Parse("foo bar baz", filter)
			So(ok, ShouldBeFalse)
			_, ok = Parse("10 40B fast", filter)
			So(ok, ShouldBeFalse)
			_, ok = Parse("Connected to server at port 4000", filter)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("While parsing raw value lines", t, func() {
		filter := NewFilter(Raw, 64)
		filter.Rank = 3

		Convey("Single float token is a sample", func() {
			s, ok := Parse("12345.6", filter)
			So(ok, ShouldBeTrue)
			So(s.Value, ShouldEqual, 12345.6)
			So(s.PayloadSize, ShouldEqual, 64)
			So(s.Rank, ShouldEqual, 3)
		})

		Convey("Surrounding whitespace is ignored", func() {
			s, ok := Parse("  42\n", filter)
			So(ok, ShouldBeTrue)
			So(s.Value, ShouldEqual, 42)
		})

		Convey("Sentinel and multi token lines are not samples", func() {
			_, ok := Parse(PilafSentinel, filter)
			So(ok, ShouldBeFalse)
			_, ok = Parse("1 2", filter)
			So(ok, ShouldBeFalse)
			_, ok = Parse("", filter)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("While parsing rate lines", t, func() {
		filter := NewFilter(Rate, 64)

		Convey("Value is operations per second", func() {
			s, ok := Parse("1 2000000 500", filter)
			So(ok, ShouldBeTrue)
			So(s.Value, ShouldEqual, 250)
		})

		Convey("Zero elapsed time is not a sample", func() {
			_, ok := Parse("1 0 500", filter)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("ParseAll keeps order and skips noise", t, func() {
		lines := []string{"starting", "1", PilafSentinel, "2.5", "done"}
		samples := ParseAll(lines, NewFilter(Raw, 8))
		So(Values(samples), ShouldResemble, []float64{1, 2.5})
	})

	Convey("Select narrows samples to the selection index", t, func() {
		samples := []Sample{{Value: 1}, {Value: 2}, {Value: 3}}
		So(Values(Select(samples, 1)), ShouldResemble, []float64{2})
		So(Select(samples, -1), ShouldResemble, samples)
		So(Select(samples, 3), ShouldBeEmpty)
	})
}
