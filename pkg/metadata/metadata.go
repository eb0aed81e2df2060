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
	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/conf"
)

// Predefined kinds of metadata. Kind groups entries recorded for one experiment:
// flags passed to the harness, environment, platform characteristics and the
// summaries of completed runs.
const (
	TypeEmpty    = ""
	TypeFlags    = "flags"
	TypeEnviron  = "environ"
	TypePlatform = "platform"
	TypeResult   = "result"
)

var backendFlag = conf.NewStringFlag("metadata_backend", "Where experiment metadata and results are recorded: none or cassandra", "none")

// Metadata interface defines methods which must be supported by DB backend
type Metadata interface {
	// Record stores a key and value and associates with the experiment id.
	Record(key string, value string, kind string) error
	// RecordMap stores a key and value map and associates with the experiment id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrieves all maps of given kind recorded for the experiment.
	GetByKind(kind string) ([]map[string]string, error)
	// Clear deletes all metadata entries associated with the current experiment id.
	Clear() error
}

// NewDefault initialize metadata backend selected with metadata_backend flag.
func NewDefault(experimentID string) (Metadata, error) {
	switch backendFlag.Value() {
	case "none":
		return NewMemory(experimentID), nil
	case "cassandra":
		return NewCassandra(experimentID, DefaultCassandraConfig())
	}
	return nil, errors.Errorf("unsupported database for metadata: %q", backendFlag.Value())
}
