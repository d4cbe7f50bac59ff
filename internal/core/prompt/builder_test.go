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

package prompt_test

import (
	"testing"

	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/core/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFromTrackInfo(t *testing.T) {
	b := prompt.NewDefaultBuilder()
	out, err := b.Build(model.ProjectData{
		TrackInfo: &model.TrackInfo{
			Title:       "Neon Dusk",
			Description: "synthwave nightdrive",
			Tags:        []string{"synth", "retro"},
		},
		AudioMetadata: &model.AudioMetadata{Title: "Embedded"},
		FallbackTitle: "file",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"Neon Dusk"`)
	assert.Contains(t, out, `"synthwave nightdrive"`)
	assert.Contains(t, out, `"synth, retro"`)
	assert.NotContains(t, out, "Embedded")
	assert.Contains(t, out, "award-winning concert artist")
}

func TestResolvePrecedence(t *testing.T) {
	b := prompt.NewDefaultBuilder()

	f := b.Resolve(model.ProjectData{
		AudioMetadata: &model.AudioMetadata{Title: "Embedded"},
		FallbackTitle: "file",
	})
	assert.Equal(t, "Embedded", f.Title)
	assert.Equal(t, prompt.DefaultFallbackDescription, f.Description)
	assert.Equal(t, prompt.DefaultFallbackTags, f.Tags)

	f = b.Resolve(model.ProjectData{
		TrackInfo:     &model.TrackInfo{Description: "only a description", Tags: []string{}},
		AudioMetadata: &model.AudioMetadata{},
		FallbackTitle: "midnight_drive",
	})
	assert.Equal(t, "midnight_drive", f.Title)
	assert.Equal(t, "only a description", f.Description)
	assert.Equal(t, prompt.DefaultFallbackTags, f.Tags)

	f = b.Resolve(model.ProjectData{})
	assert.Equal(t, "Untitled Track", f.Title)
}

func TestBuildFallbackTitle(t *testing.T) {
	out, err := prompt.NewDefaultBuilder().Build(model.ProjectData{FallbackTitle: "midnight_drive"})
	require.NoError(t, err)
	assert.Contains(t, out, `The song's title is "midnight_drive"`)
	assert.Contains(t, out, `described as "An experimental and creative musical piece"`)
	assert.Contains(t, out, `tagged as "experimental, creative"`)
}

func TestBuildDoesNotEscape(t *testing.T) {
	out, err := prompt.NewDefaultBuilder().Build(model.ProjectData{
		TrackInfo: &model.TrackInfo{Title: `Rock & "Roll" <live>`},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `Rock & "Roll" <live>`)
}

func TestCustomTemplate(t *testing.T) {
	b, err := prompt.NewBuilder(prompt.Options{
		Template:      "{{.Title}} | {{.Description}} | {{.Tags}}",
		FallbackTitle: "Nameless",
		FallbackTags:  "none",
	})
	require.NoError(t, err)
	out, err := b.Build(model.ProjectData{})
	require.NoError(t, err)
	assert.Equal(t, "Nameless | An experimental and creative musical piece | none", out)
}

func TestInvalidTemplate(t *testing.T) {
	_, err := prompt.NewBuilder(prompt.Options{Template: "{{.Title"})
	assert.Error(t, err)

	b, err := prompt.NewBuilder(prompt.Options{Template: "{{.Mood}}"})
	require.NoError(t, err)
	_, err = b.Build(model.ProjectData{})
	assert.Error(t, err)
}
