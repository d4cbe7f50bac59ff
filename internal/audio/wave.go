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
	"errors"
	"strings"

	"github.com/go-audio/wav"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

var errCorruptWAVE = errors.New("corrupt WAVE header")

// readWAVE walks the file twice: once to the data chunk for the duration,
// and once over every chunk for the LIST/INFO title, which may follow the
// audio data.
func readWAVE(data []byte) (*model.AudioMetadata, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, errCorruptWAVE
	}
	out := &model.AudioMetadata{Format: FormatWAVE}

	if err := decoder.FwdToPCM(); err == nil && decoder.Err() == nil {
		// Streaming writers leave the data size unset; count what is present.
		size := decoder.PCMSize
		if size <= 0 || size > len(data) {
			size = len(data)
		}
		out.Duration = samplesDuration(uint64(size), uint64(decoder.AvgBytesPerSec))
	}

	tags := wav.NewDecoder(bytes.NewReader(data))
	tags.ReadMetadata()
	if tags.Metadata != nil {
		out.Title = strings.TrimSpace(strings.TrimRight(tags.Metadata.Title, "\x00"))
	}
	return out, nil
}
