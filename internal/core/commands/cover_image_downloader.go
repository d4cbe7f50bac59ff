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

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/cor"
)

// CoverImageDownloader fetches the generated image bytes.
type CoverImageDownloader struct {
	cor.BaseCommand
	fetcher cloud.ImageFetcher
}

// NewCoverImageDownloader is the constructor for the CoverImageDownloader command.
func NewCoverImageDownloader(name string, fetcher cloud.ImageFetcher) *CoverImageDownloader {
	return &CoverImageDownloader{BaseCommand: *cor.NewBaseCommand(name), fetcher: fetcher}
}

func (c *CoverImageDownloader) Execute(context cor.Context) {
	url := context.Get(c.GetInputParam()).(string)

	data, err := c.fetcher.Fetch(context.GetContext(), url)
	if err != nil {
		c.Fail(context, fmt.Errorf("image download failed: %w", err))
		return
	}
	if len(data) == 0 {
		c.Fail(context, fmt.Errorf("image download returned no data"))
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), data)
}
