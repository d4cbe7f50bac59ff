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

package audio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"
)

// readFLAC parses the metadata blocks only; audio frames are never decoded.
func readFLAC(data []byte) (*model.AudioMetadata, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("corrupt FLAC metadata: %w", err)
	}
	defer stream.Close()

	out := &model.AudioMetadata{Format: FormatFLAC}
	if stream.Info != nil {
		out.Duration = samplesDuration(stream.Info.NSamples, uint64(stream.Info.SampleRate))
	}
	for _, block := range stream.Blocks {
		comment, ok := block.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		if title := vorbisTitle(comment); title != "" {
			out.Title = title
			break
		}
	}
	return out, nil
}

func vorbisTitle(comment *meta.VorbisComment) string {
	for _, tag := range comment.Tags {
		if strings.EqualFold(tag[0], "TITLE") {
			return strings.TrimSpace(tag[1])
		}
	}
	return ""
}
