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
	"encoding/json"
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// TrackInfoReader loads the optional info.json sidecar of the project folder.
// A missing file and an unparsable one are treated alike: no track info.
type TrackInfoReader struct {
	cor.BaseCommand
	store cloud.ObjectStore
}

// NewTrackInfoReader is the constructor for the TrackInfoReader command.
func NewTrackInfoReader(name string, store cloud.ObjectStore) *TrackInfoReader {
	return &TrackInfoReader{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

func (c *TrackInfoReader) Execute(context cor.Context) {
	upload := context.Get(c.GetInputParam()).(*model.AudioUpload)
	key := model.TrackInfoKey(upload.ProjectFolder)

	// The upload travels on regardless of what happens to the sidecar.
	defer context.Add(c.GetOutputParam(), upload)

	data, err := c.store.Get(context.GetContext(), upload.Bucket, key)
	if err != nil {
		slog.WarnContext(context.GetContext(), "no track info available",
			"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key,
			"project", upload.ProjectFolder, "error", err)
		return
	}

	var info model.TrackInfo
	if err := json.Unmarshal(data, &info); err != nil {
		slog.WarnContext(context.GetContext(), "ignoring unparsable track info",
			"command", c.GetName(), "bucket", upload.Bucket, "key", key,
			"project", upload.ProjectFolder, "error", err)
		return
	}

	c.Succeed(context)
	context.Add(model.GetTrackInfoName(), &info)
}
