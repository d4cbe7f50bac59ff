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

	"github.com/massey-audio/upload-processor/internal/core/model"
)

// GCSEventTypeFinalize is the Pub/Sub eventType attribute of object creation.
const GCSEventTypeFinalize = "OBJECT_FINALIZE"

// GCSPubSubNotification represents the JSON payload Cloud Storage publishes
// to Pub/Sub for object changes. Only Bucket and Name are consumed.
type GCSPubSubNotification struct {
	Kind         string                 `json:"kind"`         // Typically "storage#object".
	ID           string                 `json:"id"`           // Bucket, name and generation.
	SelfLink     string                 `json:"selfLink"`     // The URI for this object.
	Name         string                 `json:"name"`         // The name of the object within the bucket. Not URL-encoded.
	Bucket       string                 `json:"bucket"`       // The name of the bucket containing the object.
	Generation   string                 `json:"generation"`   // The generation number of the object's content.
	ContentType  string                 `json:"contentType"`  // The MIME type of the object's content.
	TimeCreated  string                 `json:"timeCreated"`  // The creation time of the object.
	Updated      string                 `json:"updated"`      // The last modification time of the object.
	StorageClass string                 `json:"storageClass"` // The storage class of the object.
	Size         string                 `json:"size"`         // The size of the object in bytes.
	MD5Hash      string                 `json:"md5Hash"`      // The MD5 hash of the object's content.
	MediaLink    string                 `json:"mediaLink"`    // A link to download the object's content.
	MetaData     map[string]interface{} `json:"metadata"`     // User-provided metadata, if any.
	ETag         string                 `json:"etag"`         // The HTTP ETag of the object.
}

// ParseGCSNotification decodes a Pub/Sub message body.
func ParseGCSNotification(data []byte) (*GCSPubSubNotification, error) {
	var out GCSPubSubNotification
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GCS notification: %w", err)
	}
	if out.Bucket == "" || out.Name == "" {
		return nil, fmt.Errorf("GCS notification is missing bucket or name")
	}
	return &out, nil
}

// ToChangeNotification converts the notification into the trigger-neutral
// form. GCS names arrive raw, so they are query-escaped to match the encoding
// of S3-style keys; DecodeObjectKey then restores the original name.
func (n *GCSPubSubNotification) ToChangeNotification() model.ChangeNotification {
	return model.ChangeNotification{Bucket: n.Bucket, Key: EncodeS3Key(n.Name)}
}
