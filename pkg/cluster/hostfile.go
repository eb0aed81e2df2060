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
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/utils/fs"
)

// Host is one entry of launcher hostfile.
type Host struct {
	Name  string
	Slots int
}

// ReadHostfile parses `host [slots=N]` lines. Empty lines and comments are skipped.
func ReadHostfile(path string) ([]Host, error) {
	lines, err := fs.ReadLines(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read hostfile")
	}
	return ParseHostfile(lines)
}

// ParseHostfile parses hostfile lines.
func ParseHostfile(lines []string) ([]Host, error) {
	var hosts []Host
	for number, line := range lines {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		host := Host{Name: fields[0], Slots: 1}
		for _, field := range fields[1:] {
			key, value, found := strings.Cut(field, "=")
			if !found || (key != "slots" && key != "max_slots" && key != "max-slots") {
				continue
			}
			slots, err := strconv.Atoi(value)
			if err != nil || slots < 1 {
				return nil, errors.Errorf("hostfile line %d: invalid slot count %q", number+1, value)
			}
			if key == "slots" {
				host.Slots = slots
			}
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// HostNames returns names of hosts.
func HostNames(hosts []Host) []string {
	names := make([]string, 0, len(hosts))
	for _, host := range hosts {
		names = append(names, host.Name)
	}
	return names
}
