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

// This file defines the command that calls the image generation service.
//
// Exactly one request is made per execution, for one image. A response
// without an image URL fails the chain, so nothing is written.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ImageParameters are the fixed request parameters of every cover.
type ImageParameters struct {
	Model   string
	Size    string
	Quality string
}

// CoverImageGenerator requests a cover image for the prompt in its input.
type CoverImageGenerator struct {
	cor.BaseCommand
	generator  cloud.ImageGenerator
	parameters ImageParameters
	requests   metric.Int64Counter
}

// NewCoverImageGenerator is the constructor for the CoverImageGenerator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The image generation backend.
//   - parameters: Model, size and quality sent with every request.
//
// Outputs:
//   - *CoverImageGenerator: A pointer to the newly instantiated command.
func NewCoverImageGenerator(name string, generator cloud.ImageGenerator, parameters ImageParameters) *CoverImageGenerator {
	out := &CoverImageGenerator{BaseCommand: *cor.NewBaseCommand(name), generator: generator, parameters: parameters}
	requests, err := out.GetMeter().Int64Counter(fmt.Sprintf("%s.counter.requests", name))
	if err != nil {
		slog.Warn("failed to create request counter", "command", name, "error", err)
	}
	out.requests = requests
	return out
}

func (c *CoverImageGenerator) Execute(context cor.Context) {
	text := context.Get(c.GetInputParam()).(string)
	upload, _ := context.Get(model.GetAudioUploadName()).(*model.AudioUpload)

	if c.requests != nil {
		c.requests.Add(context.GetContext(), 1, metric.WithAttributes(attribute.String("model", c.parameters.Model)))
	}
	url, err := c.generator.GenerateImage(context.GetContext(), model.ImageRequest{
		Model:   c.parameters.Model,
		Prompt:  text,
		Size:    c.parameters.Size,
		Quality: c.parameters.Quality,
		Count:   1,
	})
	if err == nil && url == "" {
		err = cloud.ErrNoImageURL
	}
	if err != nil {
		c.Fail(context, fmt.Errorf("image generation failed: %w", err))
		return
	}

	if upload != nil {
		slog.InfoContext(context.GetContext(), "generated cover image",
			"command", c.GetName(), "bucket", upload.Bucket, "key", upload.Key, "model", c.parameters.Model)
	}
	c.Succeed(context)
	context.Add(model.GetImageURLName(), url)
	context.Add(c.GetOutputParam(), url)
}
