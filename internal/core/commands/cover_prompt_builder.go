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
	"github.com/massey-audio/upload-processor/internal/core/prompt"
)

// CoverPromptBuilder renders the image prompt from the project data.
type CoverPromptBuilder struct {
	cor.BaseCommand
	builder *prompt.Builder
}

// NewCoverPromptBuilder is the constructor for the CoverPromptBuilder command.
func NewCoverPromptBuilder(name string, builder *prompt.Builder) *CoverPromptBuilder {
	return &CoverPromptBuilder{BaseCommand: *cor.NewBaseCommand(name), builder: builder}
}

func (c *CoverPromptBuilder) Execute(context cor.Context) {
	data := context.Get(c.GetInputParam()).(*model.ProjectData)

	text, err := c.builder.Build(*data)
	if err != nil {
		c.Fail(context, err)
		return
	}

	slog.InfoContext(context.GetContext(), "Generated prompt", "command", c.GetName(), "prompt", text)
	c.Succeed(context)
	context.Add(model.GetPromptName(), text)
	context.Add(c.GetOutputParam(), text)
}
