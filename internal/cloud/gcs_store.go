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

package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSObjectStore implements ObjectStore on Google Cloud Storage.
type GCSObjectStore struct {
	client    *storage.Client
	projectID string // Needed only for ListBuckets.
}

// NewGCSObjectStore wraps an existing storage client.
func NewGCSObjectStore(client *storage.Client, projectID string) *GCSObjectStore {
	return &GCSObjectStore{client: client, projectID: projectID}
}

func (s *GCSObjectStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: listDelimiter})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", bucket, prefix, err)
		}
		// With a delimiter, sub-folders come back as prefix-only entries.
		if attrs.Name == "" {
			continue
		}
		objects = append(objects, ObjectInfo{Key: attrs.Name, Size: attrs.Size})
	}
	return objects, nil
}

func (s *GCSObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, key, err)
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close GCS reader", "bucket", bucket, "key", key, "error", err)
		}
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *GCSObjectStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	// Canceling the writer's context abandons the upload; Close would
	// finalize whatever was written so far.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		cancel()
		return fmt.Errorf("failed to write gs://%s/%s: %w", bucket, key, err)
	}
	// The object is only created once the writer is closed.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *GCSObjectStore) ListBuckets(ctx context.Context) ([]string, error) {
	var names []string
	it := s.client.Buckets(ctx, s.projectID)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}
