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

package fs

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
)

// ReadTail returns last lineCount lines of the file.
func ReadTail(filePath string, lineCount int) (tail []string, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read tail of %q", filePath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		tail = append(tail, scanner.Text())
		if len(tail) > lineCount {
			tail = tail[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read tail of %q", filePath)
	}

	return tail, nil
}

// ReadLines returns all lines of the file.
func ReadLines(filePath string) (lines []string, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %q", filePath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read %q", filePath)
	}

	return lines, nil
}
