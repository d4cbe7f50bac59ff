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
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/notification"
)

// minioCreatedEvents subscribes to every object creation flavor.
var minioCreatedEvents = []string{"s3:ObjectCreated:*"}

// MinioNotificationListener streams bucket notifications from a MinIO server.
// Every event is passed on; the processor does its own key and extension
// filtering.
type MinioNotificationListener struct {
	client    *minio.Client
	bucket    string
	processor NotificationProcessor
}

// NewMinioNotificationListener creates a listener for bucket.
func NewMinioNotificationListener(client *minio.Client, bucket string, processor NotificationProcessor) *MinioNotificationListener {
	return &MinioNotificationListener{client: client, bucket: bucket, processor: processor}
}

// SetProcessor attaches the processor once. Later calls are ignored.
func (l *MinioNotificationListener) SetProcessor(processor NotificationProcessor) {
	if l.processor == nil {
		l.processor = processor
	}
}

// Listen starts streaming in the background until ctx is canceled.
func (l *MinioNotificationListener) Listen(ctx context.Context) {
	slog.Info("listening for minio bucket notifications", "bucket", l.bucket)

	go func() {
		for info := range l.client.ListenBucketNotification(ctx, l.bucket, "", "", minioCreatedEvents) {
			l.HandleInfo(ctx, info)
		}
		slog.Info("minio notification stream closed", "bucket", l.bucket)
	}()
}

// HandleInfo processes one batch of records from the notification stream.
func (l *MinioNotificationListener) HandleInfo(ctx context.Context, info notification.Info) []model.Result {
	if info.Err != nil {
		slog.ErrorContext(ctx, "minio notification error", "bucket", l.bucket, "error", info.Err)
		return nil
	}
	notifications := make([]model.ChangeNotification, 0, len(info.Records))
	for _, record := range info.Records {
		if record.S3.Bucket.Name == "" || record.S3.Object.Key == "" {
			continue
		}
		notifications = append(notifications, model.ChangeNotification{
			Bucket: record.S3.Bucket.Name,
			Key:    record.S3.Object.Key,
		})
	}
	if len(notifications) == 0 {
		return nil
	}
	return l.processor.ProcessBatch(ctx, notifications)
}
