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
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// ProjectDataAssembler merges whatever the lookups found with the fallback
// title derived from the file name.
type ProjectDataAssembler struct {
	cor.BaseCommand
}

// NewProjectDataAssembler is the constructor for the ProjectDataAssembler command.
func NewProjectDataAssembler(name string) *ProjectDataAssembler {
	return &ProjectDataAssembler{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *ProjectDataAssembler) Execute(context cor.Context) {
	upload := context.Get(c.GetInputParam()).(*model.AudioUpload)

	data := &model.ProjectData{FallbackTitle: model.FallbackTitle(upload.FileName)}
	if info, ok := context.Get(model.GetTrackInfoName()).(*model.TrackInfo); ok {
		data.TrackInfo = info
	}
	if meta, ok := context.Get(model.GetAudioMetadataName()).(*model.AudioMetadata); ok {
		data.AudioMetadata = meta
	}

	c.Succeed(context)
	context.Add(model.GetProjectDataName(), data)
	context.Add(c.GetOutputParam(), data)
}
