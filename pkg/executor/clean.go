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
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

type taskHandleStopper struct {
	taskHandles []TaskHandle
	sync.Mutex
}

var (
	globalTaskHandleStopper *taskHandleStopper
	globalStopperMutex      sync.Mutex
)

// RegisterInterruptHandle waits for Interrupt signal and stops unconditionally all task handles
// created afterwards by executors of this package. It returns function stopping them on demand.
func RegisterInterruptHandle() func() {
	globalStopperMutex.Lock()
	defer globalStopperMutex.Unlock()
	globalTaskHandleStopper = &taskHandleStopper{taskHandles: []TaskHandle{}}
	return globalTaskHandleStopper.registerInterruptHandle()
}

func register(t TaskHandle) {
	globalStopperMutex.Lock()
	stopper := globalTaskHandleStopper
	globalStopperMutex.Unlock()
	if stopper != nil {
		stopper.register(t)
	}
}

func (ths *taskHandleStopper) registerInterruptHandle() func() {
	logrus.Debugf("clean: interrupt handle initialized")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		logrus.Debugf("clean: stopAllTaskHandles on signal '%v'", <-c)
		ths.stopAllTaskHandles()
		os.Exit(1)
	}()
	return ths.stopAllTaskHandles
}

func (ths *taskHandleStopper) stopAllTaskHandles() {
	ths.Lock()
	defer ths.Unlock()
	// Stop in reverse order.
	for i := len(ths.taskHandles) - 1; i >= 0; i-- {
		taskHandle := ths.taskHandles[i]
		if taskHandle.Status() != RUNNING {
			continue
		}
		logrus.Debugf("clean: stopping '%v'...", taskHandle)
		logrus.Debugf("clean: taskHandle '%v' Stop() returned '%v'", taskHandle, taskHandle.Stop())
	}
	ths.taskHandles = ths.taskHandles[:0]
}

func (ths *taskHandleStopper) register(t TaskHandle) {
	ths.Lock()
	defer ths.Unlock()
	ths.taskHandles = append(ths.taskHandles, t)
}

// StopCleanAndErase stops the task, closes its output files and removes them.
// Errors are logged only.
func StopCleanAndErase(handle TaskHandle) {
	if handle == nil {
		return
	}
	if err := handle.Stop(); err != nil {
		logrus.Errorf("Cannot stop %v: %v", handle, err)
	}
	if err := handle.Clean(); err != nil {
		logrus.Errorf("Cannot clean %v: %v", handle, err)
	}
	if err := handle.EraseOutput(); err != nil {
		logrus.Errorf("Cannot erase output of %v: %v", handle, err)
	}
}
