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
	"context"
	"encoding/base64"
	"fmt"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"google.golang.org/genai"
)

// ImagenGenerator generates covers with Imagen on Vertex AI. Imagen returns
// image bytes inline, which are handed on as a data URL.
type ImagenGenerator struct {
	models *genai.Models
}

// NewImagenGenerator wraps the Models service of a genai client.
func NewImagenGenerator(models *genai.Models) *ImagenGenerator {
	return &ImagenGenerator{models: models}
}

// NewGenAIClient creates a Vertex AI backed genai client.
func NewGenAIClient(ctx context.Context, application Application) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  application.GoogleProjectId,
		Location: application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

func (g *ImagenGenerator) GenerateImage(ctx context.Context, request model.ImageRequest) (string, error) {
	count := request.Count
	if count <= 0 {
		count = 1
	}
	resp, err := g.models.GenerateImages(ctx, request.Model, request.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		AspectRatio:    aspectRatio(request.Size),
		OutputMIMEType: model.CoverContentType,
	})
	if err != nil {
		return "", fmt.Errorf("imagen request failed: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 ||
		resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", ErrNoImageURL
	}

	image := resp.GeneratedImages[0].Image
	mimeType := image.MIMEType
	if mimeType == "" {
		mimeType = model.CoverContentType
	}
	return DataURL(mimeType, image.ImageBytes), nil
}

// ListModels returns the first page of models visible to the project.
func (g *ImagenGenerator) ListModels(ctx context.Context) ([]string, error) {
	page, err := g.models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		names = append(names, m.Name)
	}
	return names, nil
}

// DataURL encodes data as a base64 RFC 2397 URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// aspectRatio maps the pixel sizes used for OpenAI onto Imagen's ratios.
func aspectRatio(size string) string {
	switch size {
	case "1792x1024":
		return "16:9"
	case "1024x1792":
		return "9:16"
	default:
		return "1:1"
	}
}
