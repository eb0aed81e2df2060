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
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/conf"
)

var (
	cassandraAddressFlag           = conf.NewStringFlag("cassandra_addr", "Address of Cassandra DB endpoint for metadata", "127.0.0.1")
	cassandraPortFlag              = conf.NewIntFlag("cassandra_port", "Port of Cassandra DB endpoint", 9042)
	cassandraKeyspaceFlag          = conf.NewStringFlag("cassandra_keyspace", "Keyspace of metadata table", "verticut")
	cassandraCreateKeyspaceFlag    = conf.NewBoolFlag("cassandra_create_keyspace", "Create keyspace when it does not exist", true)
	cassandraUsernameFlag          = conf.NewStringFlag("cassandra_username", "Cassandra username, authentication is disabled when empty", "")
	cassandraPasswordFlag          = conf.NewStringFlag("cassandra_password", "Cassandra password", "")
	cassandraTimeoutFlag           = conf.NewDurationFlag("cassandra_timeout", "Timeout of Cassandra queries", 10*time.Second)
	cassandraConnectionTimeoutFlag = conf.NewDurationFlag("cassandra_connection_timeout", "Timeout of connecting to Cassandra", 10*time.Second)
)

// CassandraConfig encodes the settings for connecting to the database.
type CassandraConfig struct {
	Address           string
	Port              int
	KeyspaceName      string
	CreateKeyspace    bool
	Username          string
	Password          string
	Timeout           time.Duration
	ConnectionTimeout time.Duration
}

// DefaultCassandraConfig applies the Cassandra settings from the command line flags and
// environment variables.
func DefaultCassandraConfig() CassandraConfig {
	return CassandraConfig{
		Address:           cassandraAddressFlag.Value(),
		Port:              cassandraPortFlag.Value(),
		KeyspaceName:      cassandraKeyspaceFlag.Value(),
		CreateKeyspace:    cassandraCreateKeyspaceFlag.Value(),
		Username:          cassandraUsernameFlag.Value(),
		Password:          cassandraPasswordFlag.Value(),
		Timeout:           cassandraTimeoutFlag.Value(),
		ConnectionTimeout: cassandraConnectionTimeoutFlag.Value(),
	}
}

// Cassandra keeps the Cassandra session alive and tags stored metadata with the experiment id.
type Cassandra struct {
	experimentID string
	config       CassandraConfig
	session      *gocql.Session
}

// NewCassandra returns the Metadata helper from an experiment id and configuration.
func NewCassandra(experimentID string, config CassandraConfig) (Metadata, error) {
	metadata := &Cassandra{
		experimentID: experimentID,
		config:       config,
	}
	if err := metadata.connect(); err != nil {
		return nil, err
	}
	return metadata, nil
}

// clusterConfig prepares configuration of Cassandra cluster.
func clusterConfig(config CassandraConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Address)
	cluster.Port = config.Port
	cluster.Consistency = gocql.LocalOne
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.ProtoVersion = 4
	cluster.Timeout = config.Timeout
	cluster.ConnectTimeout = config.ConnectionTimeout

	if config.Username != "" && config.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}
	return cluster
}

func createKeyspace(config CassandraConfig) error {
	session, err := clusterConfig(config).CreateSession()
	if err != nil {
		return errors.Wrap(err, "cannot create session for creating keyspace")
	}
	defer session.Close()

	query := fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1};", config.KeyspaceName)
	return errors.Wrap(session.Query(query).Exec(), "cannot create keyspace")
}

// connect creates a session to the Cassandra cluster. This function should only be called once.
func (m *Cassandra) connect() error {
	if m.config.CreateKeyspace {
		if err := createKeyspace(m.config); err != nil {
			return err
		}
	}

	cluster := clusterConfig(m.config)
	cluster.Keyspace = m.config.KeyspaceName
	session, err := cluster.CreateSession()
	if err != nil {
		return errors.Wrapf(err, "cannot connect to cassandra at %s:%d", m.config.Address, m.config.Port)
	}
	m.session = session

	err = session.Query("CREATE TABLE IF NOT EXISTS metadata (experiment_id text, kind text, time timestamp, timeuuid TIMEUUID, metadata map<text,text>, PRIMARY KEY ((experiment_id), timeuuid),) WITH CLUSTERING ORDER BY (timeuuid DESC);").Exec()
	return errors.Wrap(err, "cannot create metadata table")
}

func (m *Cassandra) storeMap(metadata map[string]string, kind string) error {
	err := m.session.Query(`INSERT INTO metadata (experiment_id, kind, time, timeuuid, metadata) VALUES (?, ?, ?, ?, ?)`,
		m.experimentID, kind, time.Now(), gocql.TimeUUID(), metadata).Exec()
	return errors.Wrapf(err, "cannot publish metadata of kind %q", kind)
}

// Record stores a key and value and associates with the experiment id.
func (m *Cassandra) Record(key, value, kind string) error {
	return m.storeMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates with the experiment id.
func (m *Cassandra) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind retrieves all maps of kind recorded for the experiment, newest first.
func (m *Cassandra) GetByKind(kind string) ([]map[string]string, error) {
	var metadata map[string]string
	maps := []map[string]string{}

	iter := m.session.Query(`SELECT metadata FROM metadata WHERE experiment_id = ? AND kind = ? ALLOW FILTERING`, m.experimentID, kind).Iter()
	for iter.Scan(&metadata) {
		maps = append(maps, metadata)
		metadata = nil
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrapf(err, "cannot retrieve metadata of kind %q", kind)
	}
	return maps, nil
}

// Clear deletes all metadata entries associated with the current experiment id.
func (m *Cassandra) Clear() error {
	err := m.session.Query(`DELETE FROM metadata WHERE experiment_id = ?`, m.experimentID).Exec()
	return errors.Wrapf(err, "cannot clear metadata of %q", m.experimentID)
}
