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

package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/massey-audio/upload-processor/internal/core/model"
)

// PNGBytes is a PNG signature followed by filler; enough for content checks.
var PNGBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// FakeImageGenerator records requests and returns URL (or Err).
type FakeImageGenerator struct {
	mu       sync.Mutex
	URL      string
	Err      error
	Models   []string
	Requests []model.ImageRequest
	// Panic makes GenerateImage panic with this value when non-nil.
	Panic interface{}
}

// NewFakeImageGenerator returns a generator answering with url.
func NewFakeImageGenerator(url string) *FakeImageGenerator {
	return &FakeImageGenerator{URL: url, Models: []string{"dall-e-2", "dall-e-3", "gpt-4o"}}
}

func (g *FakeImageGenerator) GenerateImage(_ context.Context, request model.ImageRequest) (string, error) {
	g.mu.Lock()
	g.Requests = append(g.Requests, request)
	g.mu.Unlock()
	if g.Panic != nil {
		panic(g.Panic)
	}
	if g.Err != nil {
		return "", g.Err
	}
	return g.URL, nil
}

func (g *FakeImageGenerator) ListModels(_ context.Context) ([]string, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Models, nil
}

// Calls returns the number of generation requests.
func (g *FakeImageGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Requests)
}

// FakeImageFetcher serves bytes from a map keyed by URL.
type FakeImageFetcher struct {
	mu      sync.Mutex
	Images  map[string][]byte
	Fetched []string
}

// NewFakeImageFetcher serves data at url.
func NewFakeImageFetcher(url string, data []byte) *FakeImageFetcher {
	return &FakeImageFetcher{Images: map[string][]byte{url: data}}
}

func (f *FakeImageFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fetched = append(f.Fetched, url)
	data, ok := f.Images[url]
	if !ok {
		return nil, fmt.Errorf("failed to fetch image: 404 Not Found")
	}
	return data, nil
}
