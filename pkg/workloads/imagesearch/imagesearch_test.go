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

package imagesearch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/executor/mocks"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

type SearchTestSuite struct {
	suite.Suite
	config    Config
	mExecutor *mocks.Executor
	mHandle   *mocks.TaskHandle
}

func (s *SearchTestSuite) SetupTest() {
	s.config = DefaultConfig()
	s.mExecutor = new(mocks.Executor)
	s.mHandle = new(mocks.TaskHandle)
}

func (s *SearchTestSuite) TestDefaultCommand() {
	s.Equal("mpirun.openmpi -n 4 distributed-image-search ../config/pilaf.cnf 1000000 128 32 100 pilaf 0", s.config.Command())
}

func (s *SearchTestSuite) TestMemcachedConfigDefault() {
	s.config.Server = workloads.Memcached
	s.Equal("../config/memcached.cnf", s.config.StorageConfig())

	s.config.ConfigPath = "custom.cnf"
	s.Equal("custom.cnf", s.config.StorageConfig())
}

func (s *SearchTestSuite) TestApproximateQuery() {
	s.config.K = 2000
	s.config.ImageCount = 100000000
	s.config.Approximate = true
	s.config.QueryID = 17
	s.config.QueryFile = "queries.bin"
	s.Equal("mpirun.openmpi -n 4 distributed-image-search ../config/pilaf.cnf 100000000 128 32 2000 pilaf 0 -a -q 17 -f queries.bin",
		s.config.Command())
}

func (s *SearchTestSuite) TestLaunch() {
	s.mExecutor.On("Execute", s.config.Command()).Return(s.mHandle, nil).Once()

	handle, err := New(s.mExecutor, s.config).Launch()
	s.NoError(err)
	s.Equal(executor.TaskHandle(s.mHandle), handle)
	s.mExecutor.AssertExpectations(s.T())
}

func (s *SearchTestSuite) TestLaunchFailure() {
	s.mExecutor.On("Execute", mock.AnythingOfType("string")).Return(nil, errors.New("mpirun.openmpi: not found")).Once()

	handle, err := New(s.mExecutor, s.config).Launch()
	s.Error(err)
	s.Nil(handle)
}

func (s *SearchTestSuite) TestUnsupportedServer() {
	s.config.Server = workloads.Echo
	s.Error(s.config.Validate())

	_, err := New(s.mExecutor, s.config).Launch()
	s.Error(err)
	s.mExecutor.AssertNotCalled(s.T(), "Execute", mock.Anything)
}

func (s *SearchTestSuite) TestConfigFromFlagsDefaults() {
	config, err := ConfigFromFlags()
	s.NoError(err)
	s.Equal(DefaultConfig(), config)
}

func (s *SearchTestSuite) TestDescription() {
	s.Contains(s.config.String(), "k = 100, server: pilaf, read_mode = 0")
	s.Equal(name, New(s.mExecutor, s.config).Name())
}

func TestSearchSuite(t *testing.T) {
	suite.Run(t, new(SearchTestSuite))
}
