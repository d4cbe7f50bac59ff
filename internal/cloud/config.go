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

// Package cloud holds everything that talks to the outside world: the
// configuration loaded from TOML files, the object store backends, the image
// generation backends, the trigger listeners, and the ServiceClients container
// that wires them together once per process.
//
// This file centralizes the configuration structs.
//
// Structs:
//   - Application: General settings and the Google project used by GCP backends.
//   - Storage: Which object store backend to use and how to reach it.
//   - ImageModel: Which image generation backend to use and its request parameters.
//   - PromptTemplates: The cover prompt template and its fallback strings.
//   - Telemetry: Exporter choice, log level and optional log file.
//   - Server: Port of the webhook server.
//   - TopicSubscription: One Pub/Sub subscription carrying GCS notifications.
//   - MinioListener: Settings of the MinIO bucket notification listener.
//   - Config: The top-level struct aggregating the above.
package cloud

import (
	"errors"
	"fmt"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/core/prompt"
)

// Backend identifiers accepted in configuration.
const (
	StorageProviderS3    = "s3"
	StorageProviderGCS   = "gcs"
	StorageProviderMinio = "minio"

	ImageProviderOpenAI = "openai"
	ImageProviderImagen = "imagen"

	ExporterNone = "none"
	ExporterGCP  = "gcp"
)

// Application represents general application settings.
type Application struct {
	Name            string `toml:"name"`              // The name of the application, used as the OTel service name.
	Region          string `toml:"region"`            // Object store region; overridden by AWS_REGION.
	GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID for the GCS, Pub/Sub and Imagen backends.
	GoogleLocation  string `toml:"location"`          // The Google Cloud location for Imagen.
}

// Storage represents the object store configuration. Bucket names normally
// come from the notifications; Bucket is only used by the verify command and
// the MinIO listener default.
type Storage struct {
	Provider        string `toml:"provider"`          // One of "s3", "gcs", "minio".
	Endpoint        string `toml:"endpoint"`          // Custom endpoint (S3-compatible or MinIO host:port).
	UsePathStyle    bool   `toml:"use_path_style"`    // Path-style addressing for S3-compatible endpoints.
	AccessKeyID     string `toml:"access_key_id"`     // Static credentials; the default chain is used when empty.
	SecretAccessKey string `toml:"secret_access_key"` // Static credentials; the default chain is used when empty.
	UseSSL          bool   `toml:"use_ssl"`           // TLS for MinIO.
	Bucket          string `toml:"bucket"`            // The bucket holding project folders.
}

// ImageModel represents the image generation configuration.
type ImageModel struct {
	Provider         string `toml:"provider"`           // One of "openai", "imagen".
	Model            string `toml:"model"`              // Model identifier, e.g. "dall-e-3".
	Size             string `toml:"size"`               // Requested image size, e.g. "1024x1024".
	Quality          string `toml:"quality"`            // Requested quality, e.g. "standard".
	APIKey           string `toml:"api_key"`            // OpenAI API key; overridden by OPENAI_API_KEY.
	BaseURL          string `toml:"base_url"`           // OpenAI API base URL.
	ModelFamily      string `toml:"model_family"`       // Substring the verify command looks for in model IDs.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // HTTP timeout of generation and download calls.
}

// PromptTemplates holds the cover prompt template and the values substituted
// when the project data has nothing better.
type PromptTemplates struct {
	CoverPrompt         string `toml:"cover"`                // text/template with .Title, .Description and .Tags.
	FallbackTitle       string `toml:"fallback_title"`       // Used when no title can be derived.
	FallbackDescription string `toml:"fallback_description"` // Used when info.json has no description.
	FallbackTags        string `toml:"fallback_tags"`        // Used when info.json has no tags.
}

// Telemetry controls logging and OpenTelemetry export.
type Telemetry struct {
	Exporter string `toml:"exporter"`  // "none" or "gcp".
	LogLevel string `toml:"log_level"` // debug, info, warn or error.
	LogFile  string `toml:"log_file"`  // Optional file the JSON log is also written to.
}

// Server represents the webhook server configuration.
type Server struct {
	Port int `toml:"port"`
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Per-message processing timeout.
}

// MinioListener configures the MinIO bucket notification listener.
type MinioListener struct {
	Enabled bool   `toml:"enabled"`
	Bucket  string `toml:"bucket"` // Defaults to Storage.Bucket.
}

// Config represents the overall configuration for the application, loaded from TOML files.
type Config struct {
	Application        Application                  `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	ImageModel         ImageModel                   `toml:"image_model"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	Telemetry          Telemetry                    `toml:"telemetry"`
	Server             Server                       `toml:"server"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name.
	MinioListener      MinioListener                `toml:"minio_listener"`
}

// NewConfig creates a Config holding the defaults. Files loaded on top of it
// only replace the values they set.
//
// Outputs:
//   - *Config: A pointer to a new Config with defaults and initialized maps.
func NewConfig() *Config {
	return &Config{
		Application: Application{Name: "upload-processor"},
		Storage:     Storage{Provider: StorageProviderS3, UseSSL: true},
		ImageModel: ImageModel{
			Provider:         ImageProviderOpenAI,
			Model:            "dall-e-3",
			Size:             "1024x1024",
			Quality:          "standard",
			BaseURL:          "https://api.openai.com/v1",
			ModelFamily:      "dall-e",
			TimeoutInSeconds: 120,
		},
		PromptTemplates: PromptTemplates{
			CoverPrompt:         prompt.DefaultCoverTemplate,
			FallbackTitle:       prompt.DefaultFallbackTitle,
			FallbackDescription: prompt.DefaultFallbackDescription,
			FallbackTags:        prompt.DefaultFallbackTags,
		},
		Telemetry:          Telemetry{Exporter: ExporterNone, LogLevel: "info"},
		Server:             Server{Port: 8080},
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
}

// Validate reports every problem that would make the processor unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Provider {
	case StorageProviderS3:
	case StorageProviderGCS:
		if c.Application.GoogleProjectId == "" && len(c.TopicSubscriptions) > 0 {
			errs = append(errs, errors.New("application.google_project_id is required for pub/sub subscriptions"))
		}
	case StorageProviderMinio:
		if c.Storage.Endpoint == "" {
			errs = append(errs, errors.New("storage.endpoint is required for the minio provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.provider %q", c.Storage.Provider))
	}

	switch c.ImageModel.Provider {
	case ImageProviderOpenAI:
		if c.ImageModel.APIKey == "" {
			errs = append(errs, errors.New("image_model.api_key (or OPENAI_API_KEY) is required for the openai provider"))
		}
	case ImageProviderImagen:
		if c.Application.GoogleProjectId == "" {
			errs = append(errs, errors.New("application.google_project_id is required for the imagen provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown image_model.provider %q", c.ImageModel.Provider))
	}

	if c.ImageModel.Model == "" {
		errs = append(errs, errors.New("image_model.model is required"))
	}

	switch c.Telemetry.Exporter {
	case ExporterNone, ExporterGCP, "":
	default:
		errs = append(errs, fmt.Errorf("unknown telemetry.exporter %q", c.Telemetry.Exporter))
	}

	// A test render catches references to fields the prompt does not have.
	builder, err := prompt.NewBuilder(prompt.Options{Template: c.PromptTemplates.CoverPrompt})
	if err == nil {
		_, err = builder.Build(model.ProjectData{})
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("prompt_templates.cover: %w", err))
	}

	return errors.Join(errs...)
}
