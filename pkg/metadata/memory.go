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

package metadata

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Memory keeps metadata of the experiment in memory only.
type Memory struct {
	experimentID string
	mutex        sync.Mutex
	entries      map[string][]map[string]string
}

// NewMemory returns in-memory metadata store.
func NewMemory(experimentID string) *Memory {
	return &Memory{experimentID: experimentID, entries: map[string][]map[string]string{}}
}

// Record stores a key and value and associates with the experiment id.
func (m *Memory) Record(key, value, kind string) error {
	return m.RecordMap(map[string]string{key: value}, kind)
}

// RecordMap stores a copy of metadata map.
func (m *Memory) RecordMap(metadata map[string]string, kind string) error {
	copied := make(map[string]string, len(metadata))
	for key, value := range metadata {
		copied[key] = value
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries[kind] = append(m.entries[kind], copied)
	logrus.Debugf("metadata %s/%q: %v", m.experimentID, kind, copied)
	return nil
}

// GetByKind returns maps of given kind in order of recording.
func (m *Memory) GetByKind(kind string) ([]map[string]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]map[string]string{}, m.entries[kind]...), nil
}

// Clear removes all recorded metadata.
func (m *Memory) Clear() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries = map[string][]map[string]string{}
	return nil
}
