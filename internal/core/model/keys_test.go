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

package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObjectKey(t *testing.T) {
	cases := map[string]string{
		"Summer+Songs/track+one.mp3":   "Summer Songs/track one.mp3",
		"a%2Bb/c.wav":                  "a+b/c.wav",
		"caf%C3%A9/ch%C3%A0nson.flac":  "café/chànson.flac",
		"plain/file.mp3":               "plain/file.mp3",
		"spaces%20too/and+plus%2B.mp3": "spaces too/and plus+.mp3",
	}
	for in, want := range cases {
		got, err := model.DecodeObjectKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := model.DecodeObjectKey("broken%zz/file.mp3")
	assert.Error(t, err)
}

func TestSplitProjectKey(t *testing.T) {
	folder, file, ok := model.SplitProjectKey("project/song.mp3")
	assert.True(t, ok)
	assert.Equal(t, "project", folder)
	assert.Equal(t, "song.mp3", file)

	for _, key := range []string{"justafile.mp3", "a/b/c.mp3", "a/b/"} {
		_, _, ok := model.SplitProjectKey(key)
		assert.False(t, ok, key)
	}
}

func TestIsAudioFile(t *testing.T) {
	for _, name := range []string{"a.mp3", "a.MP3", "b.Flac", "c.wav", "d.e.wav"} {
		assert.True(t, model.IsAudioFile(name), name)
	}
	for _, name := range []string{"track.ogg", "mp3", "noext", "a.mp3.txt", ""} {
		assert.False(t, model.IsAudioFile(name), name)
	}
}

func TestIsCoverFile(t *testing.T) {
	for _, name := range []string{"p/cover.png", "p/Cover.JPG", "p/cover.old.png", "cover.jpg"} {
		assert.True(t, model.IsCoverFile(name), name)
	}
	for _, name := range []string{"p/cover.jpeg", "p/mycover.png", "p/cover", "p/info.json", "p/covers.png"} {
		assert.False(t, model.IsCoverFile(name), name)
	}
}

func TestFallbackTitle(t *testing.T) {
	assert.Equal(t, "midnight_drive", model.FallbackTitle("midnight_drive.mp3"))
	assert.Equal(t, "a.b", model.FallbackTitle("a.b.wav"))
	assert.Equal(t, "", model.FallbackTitle(".mp3"))
	assert.Equal(t, "noext", model.FallbackTitle("noext"))
	assert.Equal(t, "trailing.", model.FallbackTitle("trailing."))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "p/", model.ProjectPrefix("p"))
	assert.Equal(t, "p/info.json", model.TrackInfoKey("p"))
	assert.Equal(t, "p/cover.png", model.CoverKey("p"))
}

func TestTrackInfoIgnoresUnknownFields(t *testing.T) {
	var info model.TrackInfo
	err := json.Unmarshal([]byte(`{"title":"Neon Dusk","mood":"dark","tags":["synth","retro"],"bpm":120.5}`), &info)
	require.NoError(t, err)
	assert.Equal(t, "Neon Dusk", info.Title)
	assert.Equal(t, []string{"synth", "retro"}, info.Tags)
	assert.Equal(t, 120.5, info.BPM)
}

func TestTrackInfoDropsMistypedFields(t *testing.T) {
	var info model.TrackInfo
	err := json.Unmarshal([]byte(`{"title":"Neon Dusk","description":"synthwave nightdrive","tags":["synth","retro"],`+
		`"bpm":"120","duration":"3:45","isFeatured":"yes","notes":null}`), &info)
	require.NoError(t, err)
	assert.Equal(t, "Neon Dusk", info.Title)
	assert.Equal(t, "synthwave nightdrive", info.Description)
	assert.Equal(t, []string{"synth", "retro"}, info.Tags)
	assert.Zero(t, info.BPM)
	assert.Zero(t, info.Duration)
	assert.False(t, info.IsFeatured)

	info = model.TrackInfo{}
	require.NoError(t, json.Unmarshal([]byte(`{"title":42,"tags":["ok",7],"description":"kept"}`), &info))
	assert.Empty(t, info.Title)
	assert.Nil(t, info.Tags)
	assert.Equal(t, "kept", info.Description)

	assert.Error(t, json.Unmarshal([]byte(`["title"]`), &info))
	assert.Error(t, json.Unmarshal([]byte(`{"title": "Neon`), &info))
}

func TestResultMarshalJSON(t *testing.T) {
	n := model.ChangeNotification{Bucket: "b", Key: "p/a+b.mp3"}
	out, err := json.Marshal(model.Failed(n, "p/a b.mp3", errors.New("boom")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bucket":"b","key":"p/a b.mp3","status":"failed","error":"boom"}`, string(out))

	out, err = json.Marshal(model.Failed(n, "", errors.New("bad key")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bucket":"b","key":"p/a+b.mp3","status":"failed","error":"bad key"}`, string(out))
}

func TestSummarize(t *testing.T) {
	n := model.ChangeNotification{}
	s := model.Summarize([]model.Result{
		model.Skipped(n, "", "x"),
		model.Processed(n, "", "p/cover.png"),
		model.Failed(n, "", errors.New("e")),
		model.Skipped(n, "", "y"),
	})
	assert.Equal(t, model.Summary{Skipped: 2, Processed: 1, Failed: 1}, s)
}
