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

// This file contains the hierarchical configuration loader.
//
// Functions:
//   - fileExists: A simple helper to check if a file exists.
//   - LoadConfig: Reads a base configuration file and then overwrites values
//     with a second, runtime-specific file (e.g., .env.local.toml). The
//     directory and runtime come from environment variables.
//   - ApplyEnvironmentOverrides: Applies the OPENAI_API_KEY and AWS_REGION
//     variables on top of whatever the files set.
package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Cloud Constants define key strings used for configuration loading.
const (
	ConfigFileBaseName  = ".env"                           // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"                          // The file extension for configuration files.
	ConfigSeparator     = "."                              // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "UPLOAD_PROCESSOR_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "UPLOAD_PROCESSOR_RUNTIME"       // The environment variable for the runtime context (e.g., "local", "test", "prod").
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"                 // Overrides image_model.api_key.
	EnvAWSRegion        = "AWS_REGION"                     // Overrides application.region.
	DefaultRuntime      = "test"
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFileNames returns the base and runtime-specific file names LoadConfig
// reads, in that order.
func ConfigFileNames() (base string, runtime string) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = DefaultRuntime
	}

	base = configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	runtime = configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	return base, runtime
}

// LoadConfig provides a hierarchical configuration loading mechanism. It first
// loads the base configuration file and then overwrites its values with the
// runtime-specific file. Missing files are not an error.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct.
//
// Outputs:
//   - error: If a file exists but cannot be decoded.
func LoadConfig(baseConfig interface{}) error {
	baseConfigFileName, envConfigFileName := ConfigFileNames()

	for _, name := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(name) {
			slog.Debug("configuration file not found", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Info("loaded configuration file", "file", name)
	}
	return nil
}

// ApplyEnvironmentOverrides copies the environment variables that take
// precedence over the files into config.
func ApplyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		config.ImageModel.APIKey = v
	}
	if v := os.Getenv(EnvAWSRegion); v != "" {
		config.Application.Region = v
	}
}

// LoadAppConfig builds the process configuration: defaults, then files, then
// environment overrides, then validation.
func LoadAppConfig() (*Config, error) {
	config := NewConfig()
	if err := LoadConfig(config); err != nil {
		return nil, err
	}
	ApplyEnvironmentOverrides(config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
