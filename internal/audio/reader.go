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

// Package audio extracts the little metadata the processor uses from raw
// audio bytes: container format, duration and the embedded title.
//
// The container is detected from magic bytes, not from the file name.
// MPEG audio is read with tcolgate/mp3 and bogem/id3v2 (dhowden/tag covers
// ID3v1 trailers), FLAC with mewkiz/flac and RIFF/WAVE with go-audio/wav.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// Container names reported in AudioMetadata.Format.
const (
	FormatMPEG = "MPEG"
	FormatFLAC = "FLAC"
	FormatWAVE = "WAVE"
)

// ErrUnsupportedFormat is returned for bytes that are not a supported container.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Reader is stateless and safe for concurrent use.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read detects the container of data and parses what it can. Fields that
// cannot be determined are left zero; only an undetectable container or a
// corrupt header is an error.
func (r *Reader) Read(data []byte) (*model.AudioMetadata, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect audio format: %w", err)
	}

	switch kind.Extension {
	case "mp3":
		return readMPEG(data)
	case "flac":
		return readFLAC(data)
	case "wav":
		return readWAVE(data)
	default:
		if kind == types.Unknown {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
}

// samplesDuration converts a count of units played at rate units per second,
// saturating instead of overflowing for absurd headers.
func samplesDuration(count uint64, rate uint64) time.Duration {
	if count == 0 || rate == 0 {
		return 0
	}
	seconds := count / rate
	if seconds >= uint64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	rest := count % rate
	return time.Duration(seconds)*time.Second + time.Duration(float64(rest)*float64(time.Second)/float64(rate))
}
