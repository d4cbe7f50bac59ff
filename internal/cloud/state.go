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

// This file is the dependency injection container of the processor. Every
// client that talks to the outside world is created here once, at startup,
// and shared by reference for the life of the process.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at application startup with the loaded Config.
//  2. It creates the object store selected by storage.provider.
//  3. It creates the image generator selected by image_model.provider and the
//     instrumented HTTP client shared by the generator and the image fetcher.
//  4. It creates the Pub/Sub client and listeners when subscriptions are
//     configured, and the MinIO listener when enabled.
//  5. Everything is bundled into ServiceClients.
//
// Only the clients named by the configuration are created, so a Lambda
// deployment on S3 never touches Google credentials.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/massey-audio/upload-processor/internal/audio"
	"github.com/minio/minio-go/v7"
	"google.golang.org/genai"
)

// ServiceClients holds every initialized client. The processor only depends on
// ObjectStore, ImageGenerator, ImageFetcher and AudioReader; the rest are kept so they can
// be closed and so the listeners can be started.
type ServiceClients struct {
	ObjectStore     ObjectStore                // Backend selected by storage.provider.
	ImageGenerator  ImageGenerator             // Backend selected by image_model.provider.
	ImageFetcher    ImageFetcher               // Downloads generated images.
	AudioReader     AudioMetadataReader        // Parses uploaded audio.
	StorageClient   *storage.Client            // Set for the gcs provider.
	MinioClient     *minio.Client              // Set for the minio provider.
	PubsubClient    *pubsub.Client             // Set when topic subscriptions are configured.
	GenAIClient     *genai.Client              // Set for the imagen provider.
	PubSubListeners map[string]*PubSubListener // Keyed by the logical name from the config.
	MinioListener   *MinioNotificationListener // Set when minio_listener.enabled.
}

// Close releases the clients that hold connections.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
}

// SetProcessor attaches the processor to every listener.
func (c *ServiceClients) SetProcessor(processor NotificationProcessor) {
	for _, listener := range c.PubSubListeners {
		listener.SetProcessor(processor)
	}
	if c.MinioListener != nil {
		c.MinioListener.SetProcessor(processor)
	}
}

// NewCloudServiceClients creates the clients named by config.
//
// Inputs:
//   - ctx: Context used while creating clients.
//   - config: The validated application configuration.
//
// Outputs:
//   - *ServiceClients: The container.
//   - error: If any client cannot be created.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{
		AudioReader:     audio.NewReader(),
		PubSubListeners: make(map[string]*PubSubListener),
	}

	switch config.Storage.Provider {
	case StorageProviderGCS:
		sc, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		cloud.StorageClient = sc
		cloud.ObjectStore = NewGCSObjectStore(sc, config.Application.GoogleProjectId)
	case StorageProviderMinio:
		mc, err := NewMinioClient(config.Storage, config.Application.Region)
		if err != nil {
			return nil, err
		}
		cloud.MinioClient = mc
		cloud.ObjectStore = NewMinioObjectStore(mc)
	default:
		s3Client, err := NewS3Client(ctx, config.Application.Region, config.Storage)
		if err != nil {
			return nil, err
		}
		cloud.ObjectStore = NewS3ObjectStore(s3Client)
	}

	httpClient := NewInstrumentedHTTPClient(time.Duration(config.ImageModel.TimeoutInSeconds) * time.Second)
	cloud.ImageFetcher = NewHTTPImageFetcher(httpClient)

	switch config.ImageModel.Provider {
	case ImageProviderImagen:
		gc, err := NewGenAIClient(ctx, config.Application)
		if err != nil {
			return nil, err
		}
		cloud.GenAIClient = gc
		cloud.ImageGenerator = NewImagenGenerator(gc.Models)
	default:
		cloud.ImageGenerator = NewOpenAIImageGenerator(httpClient, config.ImageModel.BaseURL, config.ImageModel.APIKey)
	}

	if len(config.TopicSubscriptions) > 0 {
		pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		cloud.PubsubClient = pc

		// The processor is attached later, once the workflow has been built.
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(pc, values.Name, time.Duration(values.TimeoutInSeconds)*time.Second, nil)
			if err != nil {
				return nil, err
			}
			cloud.PubSubListeners[subKey] = listener
		}
	}

	if config.MinioListener.Enabled {
		if cloud.MinioClient == nil {
			return nil, fmt.Errorf("minio_listener requires the minio storage provider")
		}
		bucket := config.MinioListener.Bucket
		if bucket == "" {
			bucket = config.Storage.Bucket
		}
		cloud.MinioListener = NewMinioNotificationListener(cloud.MinioClient, bucket, nil)
	}

	slog.Info("service clients initialized",
		"storage_provider", config.Storage.Provider,
		"image_provider", config.ImageModel.Provider,
		"subscriptions", len(cloud.PubSubListeners),
		"minio_listener", cloud.MinioListener != nil)

	return cloud, nil
}
