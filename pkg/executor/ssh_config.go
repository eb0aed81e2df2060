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
	"io/ioutil"
	"os"
	"os/user"
	"path"

	"github.com/pkg/errors"
	"github.com/tu-dresden/verticut/pkg/conf"
	"golang.org/x/crypto/ssh"
)

const (
	// DefaultSSHPort represent default port of SSH server (22).
	DefaultSSHPort    = 22
	defaultSSHKeyPath = ".ssh/id_rsa"
)

var (
	sshUserFlag    = conf.NewStringFlag("remote_ssh_login", "Login used for connecting to remote nodes (current user when empty)", "")
	sshKeyPathFlag = conf.NewStringFlag("remote_ssh_key_path", "Private key used for connecting to remote nodes (~/.ssh/id_rsa when empty)", "")
	sshPortFlag    = conf.NewIntFlag("remote_ssh_port", "Port of SSH server on remote nodes", DefaultSSHPort)
)

// SSHConfig with clientConfig, host and port to connect.
type SSHConfig struct {
	ClientConfig *ssh.ClientConfig
	Host         string
	Port         int
}

// getAuthMethod which uses given key.
func getAuthMethod(keyPath string) (ssh.AuthMethod, error) {
	buffer, err := ioutil.ReadFile(keyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read SSH key %q", keyPath)
	}

	key, err := ssh.ParsePrivateKey(buffer)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse SSH key %q", keyPath)
	}

	return ssh.PublicKeys(key), nil
}

// NewSSHConfig creates a new ssh config for host using flags for login, key and port.
// NOTE: When flags are not given, private key is assumed in default dir (<home_dir>/.ssh/).
func NewSSHConfig(host string) (*SSHConfig, error) {
	login := sshUserFlag.Value()
	keyPath := sshKeyPathFlag.Value()

	if login == "" || keyPath == "" {
		current, err := user.Current()
		if err != nil {
			return nil, errors.Wrap(err, "cannot determine current user")
		}
		if login == "" {
			login = current.Username
		}
		if keyPath == "" {
			keyPath = path.Join(current.HomeDir, defaultSSHKeyPath)
		}
	}

	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		return nil, errors.Errorf("SSH key not found in %q", keyPath)
	}

	authMethod, err := getAuthMethod(keyPath)
	if err != nil {
		return nil, err
	}

	clientConfig := &ssh.ClientConfig{
		User: login,
		Auth: []ssh.AuthMethod{
			authMethod,
		},
		// Cluster nodes are trusted and their host keys are not distributed.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	return &SSHConfig{
		ClientConfig: clientConfig,
		Host:         host,
		Port:         sshPortFlag.Value(),
	}, nil
}
