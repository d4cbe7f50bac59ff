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
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// S3EventNotifications flattens an S3 event into change notifications. Keys
// are kept URL-encoded as delivered. Records without a bucket or key are
// dropped.
func S3EventNotifications(event events.S3Event) []model.ChangeNotification {
	out := make([]model.ChangeNotification, 0, len(event.Records))
	for _, record := range event.Records {
		if record.S3.Bucket.Name == "" || record.S3.Object.Key == "" {
			continue
		}
		out = append(out, model.ChangeNotification{
			Bucket: record.S3.Bucket.Name,
			Key:    record.S3.Object.Key,
		})
	}
	return out
}

// ParseS3Event decodes an S3-format event document as sent by S3 itself,
// MinIO webhook targets, or a manual replay.
func ParseS3Event(data []byte) (events.S3Event, error) {
	var event events.S3Event
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal S3 event: %w", err)
	}
	return event, nil
}

// EncodeS3Key applies the S3 event key encoding to a raw key, so that raw
// names from other triggers go through the same decoding step.
func EncodeS3Key(key string) string {
	return url.QueryEscape(key)
}
