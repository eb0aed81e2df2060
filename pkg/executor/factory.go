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
	"github.com/tu-dresden/verticut/pkg/net"
)

// CreateExecutor is factory for executor depending on ip provided. In case of localhost it returns
// Local executor otherwise it returns Remote with ssh config built from flags.
// Task output is kept in outputDir.
func CreateExecutor(ip string, outputDir string) (Executor, error) {
	// NOTE: We don't want to ssh on localhost if not needed.
	if net.IsAddrLocal(ip) {
		return NewLocalWithOutputDir(outputDir), nil
	}

	sshConfig, err := NewSSHConfig(ip)
	if err != nil {
		return nil, err
	}

	return NewRemoteWithOutputDir(sshConfig, outputDir), nil
}
