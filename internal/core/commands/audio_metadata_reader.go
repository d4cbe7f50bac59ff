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

package commands

import (
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// AudioMetadataReader downloads the uploaded file and parses its metadata.
// Any failure leaves the chain without audio metadata.
type AudioMetadataReader struct {
	cor.BaseCommand
	store  cloud.ObjectStore
	parser cloud.AudioMetadataReader
}

// NewAudioMetadataReader is the constructor for the AudioMetadataReader command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - store: The object store holding the upload.
//   - parser: The audio metadata parser.
//
// Outputs:
//   - *AudioMetadataReader: A pointer to the newly instantiated command.
func NewAudioMetadataReader(name string, store cloud.ObjectStore, parser cloud.AudioMetadataReader) *AudioMetadataReader {
	return &AudioMetadataReader{BaseCommand: *cor.NewBaseCommand(name), store: store, parser: parser}
}

func (c *AudioMetadataReader) Execute(context cor.Context) {
	upload := context.Get(c.GetInputParam()).(*model.AudioUpload)
	defer context.Add(c.GetOutputParam(), upload)

	data, err := c.store.Get(context.GetContext(), upload.Bucket, upload.Key)
	if err != nil {
		slog.WarnContext(context.GetContext(), "failed to read audio object",
			"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key, "error", err)
		return
	}

	meta, err := c.parser.Read(data)
	if err != nil {
		slog.WarnContext(context.GetContext(), "failed to parse audio metadata",
			"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key, "error", err)
		return
	}

	slog.DebugContext(context.GetContext(), "read audio metadata",
		"command", c.GetName(), "key", upload.Key,
		"format", meta.Format, "duration", meta.Duration, "title", meta.Title)
	c.Succeed(context)
	context.Add(model.GetAudioMetadataName(), meta)
}
