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

package audio_test

import (
	"testing"
	"time"

	"github.com/massey-audio/upload-processor/internal/audio"
	"github.com/massey-audio/upload-processor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMP3(t *testing.T) {
	meta, err := audio.NewReader().Read(testutil.BuildMP3("Embedded Title", 300))
	require.NoError(t, err)
	assert.Equal(t, audio.FormatMPEG, meta.Format)
	assert.Equal(t, "Embedded Title", meta.Title)
	// 300 frames of 1152 samples at 44.1 kHz.
	assert.InDelta(t, 7.8367, meta.Duration.Seconds(), 0.01)
}

func TestReadMP3WithID3v1Trailer(t *testing.T) {
	meta, err := audio.NewReader().Read(testutil.AppendID3v1(testutil.BuildMP3("", 20), "Old Encoder"))
	require.NoError(t, err)
	assert.Equal(t, audio.FormatMPEG, meta.Format)
	assert.Equal(t, "Old Encoder", meta.Title)
	assert.Greater(t, meta.Duration, time.Duration(0))
}

func TestReadMP3WithoutTag(t *testing.T) {
	meta, err := audio.NewReader().Read(testutil.BuildMP3("", 10))
	require.NoError(t, err)
	assert.Equal(t, audio.FormatMPEG, meta.Format)
	assert.Empty(t, meta.Title)
	assert.Greater(t, meta.Duration, time.Duration(0))
}

func TestReadWAV(t *testing.T) {
	meta, err := audio.NewReader().Read(testutil.BuildWAV("Take Two", 8000, 1, 16000))
	require.NoError(t, err)
	assert.Equal(t, audio.FormatWAVE, meta.Format)
	assert.Equal(t, "Take Two", meta.Title)
	assert.Equal(t, 2*time.Second, meta.Duration)

	meta, err = audio.NewReader().Read(testutil.BuildWAV("", 8000, 2, 4000))
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Equal(t, 500*time.Millisecond, meta.Duration)
}

func TestReadFLAC(t *testing.T) {
	meta, err := audio.NewReader().Read(testutil.BuildFLAC("Low Tide", 44100, 44100*3))
	require.NoError(t, err)
	assert.Equal(t, audio.FormatFLAC, meta.Format)
	assert.Equal(t, "Low Tide", meta.Title)
	assert.Equal(t, 3*time.Second, meta.Duration)

	meta, err = audio.NewReader().Read(testutil.BuildFLAC("", 48000, 24000))
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Equal(t, 500*time.Millisecond, meta.Duration)
}

func TestReadCorruptFLAC(t *testing.T) {
	data := testutil.BuildFLAC("Low Tide", 44100, 44100)
	_, err := audio.NewReader().Read(data[:20])
	assert.Error(t, err)
}

func TestReadUnsupported(t *testing.T) {
	_, err := audio.NewReader().Read([]byte("definitely not audio"))
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)

	_, err = audio.NewReader().Read(testutil.PNGBytes)
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)

	_, err = audio.NewReader().Read(nil)
	assert.Error(t, err)
}
