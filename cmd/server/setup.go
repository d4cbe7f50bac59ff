// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file holds the state shared by the server: the configuration, the
// service clients and the workflow built from them.
//
// Functions:
//   - SetupOS: Points the configuration loader at ./configs with the "local"
//     runtime unless the environment already says otherwise.
//   - GetConfig: Loads the configuration once.
//   - InitState: Creates the clients and the workflow.
package main

import (
	"context"
	"os"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/workflow"
)

// StateManager holds the shared dependencies of the server.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	workflow *workflow.CoverArtWorkflow
}

var state = &StateManager{}

// SetupOS sets the loader environment variables that are not already set.
func SetupOS() error {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		if err := os.Setenv(cloud.EnvConfigRuntime, "local"); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig returns the configuration, loading and validating it on the
// first call.
func GetConfig() (*cloud.Config, error) {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			return nil, err
		}
		config, err := cloud.LoadAppConfig()
		if err != nil {
			return nil, err
		}
		state.config = config
	}
	return state.config, nil
}

// InitState creates the service clients and the cover art workflow.
//
// Inputs:
//   - ctx: The root context, used while creating clients.
//
// Outputs:
//   - error: If the configuration, a client or the workflow cannot be created.
func InitState(ctx context.Context) error {
	config, err := GetConfig()
	if err != nil {
		return err
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	coverArt, err := workflow.NewCoverArtWorkflow(config, cloudClients)
	if err != nil {
		cloudClients.Close()
		return err
	}
	state.workflow = coverArt
	return nil
}
