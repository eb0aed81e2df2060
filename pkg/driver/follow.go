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

package driver

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/executor"
)

// follow reads stdout of the task line by line while it is written and passes
// lines to consume until consume returns true or the task terminates and all
// its output is read.
func follow(handle executor.TaskHandle, poll time.Duration, consume func(line string) (done bool)) error {
	file, err := handle.StdoutFile()
	if err != nil {
		return errors.Wrap(err, "cannot follow client output")
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	partial := ""
	exited := false
	for {
		chunk, err := reader.ReadString('\n')
		partial += chunk

		if err == nil {
			if consume(strings.TrimRight(partial, "\r\n")) {
				return nil
			}
			partial = ""
			continue
		}
		if err != io.EOF {
			return errors.Wrapf(err, "cannot read %q", file.Name())
		}

		if exited {
			if partial != "" {
				consume(partial)
			}
			return nil
		}
		if handle.Status() == executor.TERMINATED {
			// Drain what was written before the exit.
			exited = true
			continue
		}
		time.Sleep(poll)
	}
}
