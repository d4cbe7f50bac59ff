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
	"strings"
	"time"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/tcolgate/mp3"
)

func readMPEG(data []byte) (*model.AudioMetadata, error) {
	out := &model.AudioMetadata{Format: FormatMPEG, Duration: mpegDuration(data)}

	if bytes.HasPrefix(data, []byte("ID3")) {
		id3, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true, ParseFrames: []string{"Title"}})
		if err == nil {
			out.Title = strings.TrimSpace(id3.Title())
		}
	}
	if out.Title == "" {
		// Older encoders only write the 128 byte ID3v1 trailer.
		if metadata, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
			out.Title = strings.TrimSpace(metadata.Title())
		}
	}
	return out, nil
}

// mpegDuration sums the frames the decoder can find. A truncated last frame
// ends the walk without failing the read.
func mpegDuration(data []byte) time.Duration {
	decoder := mp3.NewDecoder(bytes.NewReader(data))
	var (
		frame    mp3.Frame
		skipped  int
		duration time.Duration
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			return duration
		}
		duration += frame.Duration()
	}
}
