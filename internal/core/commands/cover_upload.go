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
	"fmt"
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// CoverUpload writes the image bytes to {folder}/cover.png as image/png.
type CoverUpload struct {
	cor.BaseCommand
	store cloud.ObjectStore
}

// NewCoverUpload is the constructor for the CoverUpload command.
func NewCoverUpload(name string, store cloud.ObjectStore) *CoverUpload {
	return &CoverUpload{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// IsExecutable also requires the upload the cover belongs to.
func (c *CoverUpload) IsExecutable(context cor.Context) bool {
	if !c.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(model.GetAudioUploadName()).(*model.AudioUpload)
	return ok
}

func (c *CoverUpload) Execute(context cor.Context) {
	data := context.Get(c.GetInputParam()).([]byte)
	upload := context.Get(model.GetAudioUploadName()).(*model.AudioUpload)

	cover := &model.GeneratedCover{
		Key:         model.CoverKey(upload.ProjectFolder),
		Data:        data,
		ContentType: model.CoverContentType,
	}
	if err := c.store.Put(context.GetContext(), upload.Bucket, cover.Key, cover.Data, cover.ContentType); err != nil {
		c.Fail(context, fmt.Errorf("failed to store cover: %w", err))
		return
	}

	slog.InfoContext(context.GetContext(), fmt.Sprintf("Successfully uploaded cover for project: %s", upload.ProjectFolder),
		"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key, "cover", cover.Key)
	c.Succeed(context)
	context.Add(model.GetCoverName(), cover)
	context.Add(c.GetOutputParam(), cover)
}
