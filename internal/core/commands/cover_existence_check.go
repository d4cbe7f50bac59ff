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

// This file defines the command that stops the chain when the project
// folder already has a cover.
//
// The check lists a single folder level and is not atomic with the later
// write: two uploads to the same folder can both pass it. Both then write the
// same key, and the last write wins.
package commands

import (
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// ReasonCoverExists is the skip reason when a cover is already present.
const ReasonCoverExists = "cover already exists"

// CoverExistenceCheck skips the chain when {folder}/cover.{png,jpg} exists.
type CoverExistenceCheck struct {
	cor.BaseCommand
	store cloud.ObjectStore
}

// NewCoverExistenceCheck is the constructor for the CoverExistenceCheck command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - store: The object store holding the project folders.
//
// Outputs:
//   - *CoverExistenceCheck: A pointer to the newly instantiated command.
func NewCoverExistenceCheck(name string, store cloud.ObjectStore) *CoverExistenceCheck {
	return &CoverExistenceCheck{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// Execute lists the project folder. A listing failure is logged and treated
// as "no cover", so the upload is still processed.
func (c *CoverExistenceCheck) Execute(context cor.Context) {
	upload := context.Get(c.GetInputParam()).(*model.AudioUpload)

	objects, err := c.store.List(context.GetContext(), upload.Bucket, model.ProjectPrefix(upload.ProjectFolder))
	if err != nil {
		slog.WarnContext(context.GetContext(), "failed to list project folder, assuming no cover",
			"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key,
			"project", upload.ProjectFolder, "error", err)
		objects = nil
	}

	for _, obj := range objects {
		if model.IsCoverFile(obj.Key) {
			slog.InfoContext(context.GetContext(), "cover already exists, skipping",
				"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key,
				"project", upload.ProjectFolder, "cover", obj.Key)
			c.Stop(context, ReasonCoverExists)
			return
		}
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), upload)
}
