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

// Package testutil provides shared fixtures for the test suites: sample
// trigger payloads, an in-memory object store, recording fakes for the image
// services, synthetic audio files and a test configuration.
package testutil

import (
	"os"
	"testing"

	"github.com/massey-audio/upload-processor/internal/cloud"
)

// HandleErr fails the test on a setup error.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("test setup failed: %v", err)
	}
}

// GetTestS3EventText returns an S3 put event for one MP3 whose key carries
// the '+' space encoding.
func GetTestS3EventText() string {
	return `{
  "Records": [
    {
      "eventVersion": "2.1",
      "eventSource": "aws:s3",
      "awsRegion": "us-east-1",
      "eventTime": "2024-10-11T03:04:08.672Z",
      "eventName": "ObjectCreated:Put",
      "userIdentity": { "principalId": "AWS:AIDAEXAMPLE" },
      "requestParameters": { "sourceIPAddress": "203.0.113.10" },
      "responseElements": {
        "x-amz-request-id": "C3D13FE58DE4C810",
        "x-amz-id-2": "FMyUVURIY8/IgAtTv8xRjskZQpcIZ9KG4V5Wp6S7S/JRWeUWerMUE5JgHvANOjpD"
      },
      "s3": {
        "s3SchemaVersion": "1.0",
        "configurationId": "audio-upload",
        "bucket": {
          "name": "promoter-2",
          "ownerIdentity": { "principalId": "A3NL1KOZZKExample" },
          "arn": "arn:aws:s3:::promoter-2"
        },
        "object": {
          "key": "Neon+Dusk/neon_dusk+%28final%29.mp3",
          "size": 5242880,
          "eTag": "d41d8cd98f00b204e9800998ecf8427e",
          "sequencer": "0055AED6DCD90281E5"
        }
      }
    }
  ]
}`
}

// GetTestGCSMessageText returns a GCS object notification for one WAV file.
// GCS does not encode the name.
func GetTestGCSMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "promoter-2/Late Night/take 2+3.wav/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/promoter-2/o/Late%20Night%2Ftake%202%2B3.wav",
  "name": "Late Night/take 2+3.wav",
  "bucket": "promoter-2",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "audio/wav",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-10-11T03:04:08.672Z",
  "size": "10584044",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/promoter-2/o/Late%20Night%2Ftake%202%2B3.wav?generation=1728615848664286&alt=media",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// GetTestTrackInfoText returns the sidecar used throughout the tests.
func GetTestTrackInfoText() string {
	return `{"title":"Neon Dusk","description":"synthwave nightdrive","tags":["synth","retro"]}`
}

// SetupOS points the configuration loader at dir with the "test" runtime.
func SetupOS(t *testing.T, dir string) {
	t.Helper()
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "test")
	t.Setenv(cloud.EnvOpenAIAPIKey, "")
	t.Setenv(cloud.EnvAWSRegion, "")
}

// WriteConfigFile writes a TOML file into dir for loader tests.
func WriteConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	HandleErr(os.WriteFile(dir+string(os.PathSeparator)+name, []byte(content), 0o600), t)
}

// GetConfig returns a valid configuration for the OpenAI backend on S3 that
// does not depend on any file or environment variable.
func GetConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.ImageModel.APIKey = "sk-test"
	config.Application.Region = "us-east-1"
	config.Storage.Bucket = "promoter-2"
	return config
}
