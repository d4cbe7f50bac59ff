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

	"github.com/massey-audio/upload-processor/internal/core/model"
)

// ErrNoImageURL is returned when the service answered without an image.
var ErrNoImageURL = errors.New("no image URL returned from image generation service")

// ImageGenerator turns a prompt into the URL of a generated image. The URL is
// either http(s) or an RFC 2397 data URL for services that return bytes inline.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, request model.ImageRequest) (string, error)
}

// ModelLister is implemented by generators that can enumerate their models.
// Only the verify command needs it.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ImageFetcher downloads the bytes behind an image URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
