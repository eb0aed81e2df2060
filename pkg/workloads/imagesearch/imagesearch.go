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
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/cluster"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

const (
	name = "Distributed Image Search"

	// NoQuery means that the search binary picks the query on its own.
	NoQuery = -1

	defaultPilafConfig     = "../config/pilaf.cnf"
	defaultMemcachedConfig = "../config/memcached.cnf"
)

var (
	launcherFlag = conf.NewStringFlag("search_launcher", "Cluster launcher of search workers", "mpirun.openmpi")
	binaryFlag   = conf.NewStringFlag("search_path", "Path to distributed-image-search binary", "distributed-image-search")

	configPathFlag  = conf.NewStringFlag("search_config", "Storage servers config, defaults to ../config/<server>.cnf", "")
	imageCountFlag  = conf.NewIntFlag("search_image_count", "Number of images to search", 1000000)
	binaryBitsFlag  = conf.NewIntFlag("search_binary_bits", "Length of binary codes", 128)
	substrLenFlag   = conf.NewIntFlag("search_substr_len", "Length of substrings of binary codes", 32)
	kFlag           = conf.NewIntFlag("search_k", "Number of nearest neighbors", 100)
	workersFlag     = conf.NewIntFlag("search_workers", "Number of search workers", 4)
	readModeFlag    = conf.NewIntFlag("search_read_mode", "Read mode of storage client", 0)
	serverFlag      = conf.NewStringFlag("search_server", "Storage server: pilaf or memcached", "pilaf")
	approximateFlag = conf.NewBoolFlag("search_approximate", "Run approximate search", false)
	queryFlag       = conf.NewIntFlag("search_query", "Query image id, -1 lets the search pick it", NoQuery)
	queryFileFlag   = conf.NewStringFlag("search_query_file", "File with query binary codes", "")
)

// Config is a config of one run of the distributed image search.
// distributed-image-search arguments:
// <config> <image count> <binary bits> <substring length> <k> <server> <read mode> [-a] [-q <id>] [-f <file>]
type Config struct {
	LauncherPath string
	Path         string
	// ConfigPath of storage servers. Default for Server is used when empty.
	ConfigPath  string
	ImageCount  int
	BinaryBits  int
	SubstrLen   int
	K           int
	Workers     int
	ReadMode    int
	Server      workloads.TargetSystem
	Approximate bool
	QueryID     int
	QueryFile   string
}

// DefaultConfig returns config with defaults of the search driver.
func DefaultConfig() Config {
	return Config{
		LauncherPath: launcherFlag.Value(),
		Path:         binaryFlag.Value(),
		ImageCount:   1000000,
		BinaryBits:   128,
		SubstrLen:    32,
		K:            100,
		Workers:      4,
		ReadMode:     0,
		Server:       workloads.Pilaf,
		QueryID:      NoQuery,
	}
}

// ConfigFromFlags returns config of the search from flags.
func ConfigFromFlags() (Config, error) {
	server, err := workloads.ParseTargetSystem(serverFlag.Value())
	if err != nil {
		return Config{}, err
	}
	config := Config{
		LauncherPath: launcherFlag.Value(),
		Path:         binaryFlag.Value(),
		ConfigPath:   configPathFlag.Value(),
		ImageCount:   imageCountFlag.Value(),
		BinaryBits:   binaryBitsFlag.Value(),
		SubstrLen:    substrLenFlag.Value(),
		K:            kFlag.Value(),
		Workers:      workersFlag.Value(),
		ReadMode:     readModeFlag.Value(),
		Server:       server,
		Approximate:  approximateFlag.Value(),
		QueryID:      queryFlag.Value(),
		QueryFile:    queryFileFlag.Value(),
	}
	return config, config.Validate()
}

// Validate checks that search can run against configured server.
func (c Config) Validate() error {
	switch c.Server {
	case workloads.Pilaf, workloads.Memcached:
	default:
		return errors.Errorf("unrecognized server type %q (expected pilaf or memcached)", c.Server)
	}
	if c.Workers < 1 {
		return errors.Errorf("at least one worker is required, got %d", c.Workers)
	}
	if c.K < 1 {
		return errors.Errorf("k has to be positive, got %d", c.K)
	}
	return nil
}

// StorageConfig returns storage servers config path, defaulted per server.
func (c Config) StorageConfig() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	if c.Server == workloads.Memcached {
		return defaultMemcachedConfig
	}
	return defaultPilafConfig
}

// Args returns argument vector of the search run.
func (c Config) Args() []string {
	launcher := cluster.Launcher{Binary: c.LauncherPath, Ranks: c.Workers}
	args := []string{
		c.StorageConfig(),
		fmt.Sprint(c.ImageCount),
		fmt.Sprint(c.BinaryBits),
		fmt.Sprint(c.SubstrLen),
		fmt.Sprint(c.K),
		c.Server.String(),
		fmt.Sprint(c.ReadMode),
	}
	if c.Approximate {
		args = append(args, "-a")
	}
	if c.QueryID != NoQuery {
		args = append(args, "-q", fmt.Sprint(c.QueryID))
	}
	if c.QueryFile != "" {
		args = append(args, "-f", c.QueryFile)
	}
	return launcher.Args(c.Path, args...)
}

// Command returns shell command of the search run.
func (c Config) Command() string {
	return strings.Join(c.Args(), " ")
}

// String describes the run the way it is logged before start.
func (c Config) String() string {
	return fmt.Sprintf("config_path = %s, image_count = %d, binary_bits = %d, substr_bits = %d, k = %d, server: %s, read_mode = %d",
		c.StorageConfig(), c.ImageCount, c.BinaryBits, c.SubstrLen, c.K, c.Server, c.ReadMode)
}

// Search is a launcher of the distributed image search.
type Search struct {
	exec executor.Executor
	conf Config
}

// New is a constructor for Search.
func New(exec executor.Executor, config Config) Search {
	return Search{exec: exec, conf: config}
}

// Launch starts search workers. Neighbors found by the workers are printed to task stdout.
func (s Search) Launch() (executor.TaskHandle, error) {
	if err := s.conf.Validate(); err != nil {
		return nil, err
	}
	return s.exec.Execute(s.conf.Command())
}

// Name returns human readable name for job.
func (s Search) Name() string {
	return name
}
