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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIImageGenerator calls the OpenAI Images API through the official SDK.
type OpenAIImageGenerator struct {
	client openai.Client
}

// NewOpenAIImageGenerator creates a generator. The client should carry the
// process-wide instrumented transport.
//
// Inputs:
//   - client: HTTP client used for every call.
//   - baseURL: API root, e.g. "https://api.openai.com/v1". Empty keeps the SDK default.
//   - apiKey: Bearer token.
//
// Outputs:
//   - *OpenAIImageGenerator: The generator.
func NewOpenAIImageGenerator(client *http.Client, baseURL, apiKey string) *OpenAIImageGenerator {
	opts := []option.RequestOption{
		option.WithHTTPClient(client),
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIImageGenerator{client: openai.NewClient(opts...)}
}

// GenerateImage requests one image and returns its URL. A response without a
// URL yields ErrNoImageURL.
func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, request model.ImageRequest) (string, error) {
	count := request.Count
	if count <= 0 {
		count = 1
	}
	params := openai.ImageGenerateParams{
		Model:          openai.ImageModel(request.Model),
		Prompt:         request.Prompt,
		N:              openai.Int(int64(count)),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	}
	if request.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(request.Size)
	}
	if request.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(request.Quality)
	}

	resp, err := g.client.Images.Generate(ctx, params)
	if err != nil {
		return "", apiError("images/generations", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", ErrNoImageURL
	}
	return resp.Data[0].URL, nil
}

// ListModels returns the IDs of every model visible to the API key.
func (g *OpenAIImageGenerator) ListModels(ctx context.Context) ([]string, error) {
	page, err := g.client.Models.List(ctx)
	if err != nil {
		return nil, apiError("models", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// apiError keeps the status and the API's own message in one line.
func apiError(path string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("OpenAI %s returned %d %s: %s: %w",
			path, apiErr.StatusCode, http.StatusText(apiErr.StatusCode), apiErr.Message, err)
	}
	return fmt.Errorf("OpenAI %s failed: %w", path, err)
}
