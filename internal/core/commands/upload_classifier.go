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

	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// Skip reasons reported by UploadClassifier.
const (
	ReasonNotInProjectFolder = "key is not directly inside a project folder"
	ReasonNotAudio           = "file is not an mp3, flac or wav upload"
)

// UploadClassifier decides whether a decoded key is an audio upload directly
// inside a top-level project folder. Anything else ends the chain as skipped.
type UploadClassifier struct {
	cor.BaseCommand
}

// NewUploadClassifier is the constructor for the UploadClassifier command.
func NewUploadClassifier(name string) *UploadClassifier {
	return &UploadClassifier{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *UploadClassifier) Execute(context cor.Context) {
	key := context.Get(c.GetInputParam()).(string)
	notification, _ := context.Get(model.GetNotificationName()).(model.ChangeNotification)

	folder, file, ok := model.SplitProjectKey(key)
	if !ok {
		slog.InfoContext(context.GetContext(), "skipping object outside a project folder",
			"command", c.GetName(), "bucket", notification.Bucket, "key", key)
		c.Stop(context, ReasonNotInProjectFolder)
		return
	}
	if !model.IsAudioFile(file) {
		slog.InfoContext(context.GetContext(), "skipping non-audio object",
			"command", c.GetName(), "bucket", notification.Bucket, "key", key)
		c.Stop(context, ReasonNotAudio)
		return
	}

	upload := &model.AudioUpload{
		Bucket:        notification.Bucket,
		Key:           key,
		ProjectFolder: folder,
		FileName:      file,
	}
	c.Succeed(context)
	context.Add(model.GetAudioUploadName(), upload)
	context.Add(c.GetOutputParam(), upload)
}
