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

package random

import (
	"math/rand"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	source = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// PortsFromRange returns 'count' distinct random ports between 'start' (inclusive) and 'end' (exclusive).
func PortsFromRange(start int, end int, count int) []int {
	if end-start < count {
		count = end - start
	}

	mu.Lock()
	defer mu.Unlock()

	ports := map[int]struct{}{}
	out := []int{}
	for len(out) < count {
		port := source.Intn(end-start) + start
		if _, ok := ports[port]; ok {
			continue
		}
		ports[port] = struct{}{}
		out = append(out, port)
	}

	return out
}

// Port returns single random port in range between 2048 and 65535, the range
// echo servers were bound to so concurrent runs do not collide.
func Port() int {
	const lowEnd = 2048
	const highEnd = 65536
	return PortsFromRange(lowEnd, highEnd, 1)[0]
}

// Int returns random int in closed range [0, max].
func Int(max int) int {
	mu.Lock()
	defer mu.Unlock()
	return source.Intn(max + 1)
}
