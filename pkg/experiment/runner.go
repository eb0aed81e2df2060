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
	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/driver"
	"github.com/tu-dresden/verticut/pkg/utils/err_collection"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

// Runner runs single sweep points.
type Runner interface {
	// Supports returns true when point can be run.
	Supports(point SweepPoint) bool
	// Run runs point to completion or failure.
	Run(point SweepPoint) driver.Outcome
}

// Drivers is a Runner dispatching points to the driver of their target system.
type Drivers map[workloads.TargetSystem]*driver.Driver

// NewDrivers indexes drivers by target of their profiles.
func NewDrivers(drivers ...*driver.Driver) Drivers {
	indexed := Drivers{}
	for _, d := range drivers {
		indexed[d.Profile().Target()] = d
	}
	return indexed
}

// Supports implements Runner interface.
func (d Drivers) Supports(point SweepPoint) bool {
	target, ok := d[point.Target]
	return ok && target.Profile().Supports(point.Kind)
}

// Run implements Runner interface. Servers kept by drivers of other targets
// are stopped first, as all targets share the cluster.
func (d Drivers) Run(point SweepPoint) driver.Outcome {
	target, ok := d[point.Target]
	if !ok {
		return driver.Outcome{State: driver.Failed, Err: errors.Errorf("no driver for %s", point.Target)}
	}
	for system, other := range d {
		if system != point.Target {
			other.Close()
		}
	}
	return target.Run(point.Kind, point.PayloadSize)
}

// Close stops servers kept by all drivers.
func (d Drivers) Close() error {
	var errs errcollection.ErrorCollection
	for _, target := range d {
		errs.Add(target.Close())
	}
	return errs.GetErrIfAny()
}

// Binaries returns binaries needed to run kinds on all targets.
func (d Drivers) Binaries(kinds []workloads.TestKind) []string {
	var binaries []string
	for _, target := range d {
		binaries = append(binaries, workloads.Binaries(target.Profile(), kinds)...)
	}
	return binaries
}
