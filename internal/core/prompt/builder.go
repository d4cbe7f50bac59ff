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

// Package prompt turns the merged project data of an upload into the text
// prompt sent to the image generation service.
//
// Field precedence:
//   - Title: TrackInfo.Title, then AudioMetadata.Title, then the file name
//     without its extension, then the fallback title ("Untitled Track").
//   - Description: TrackInfo.Description, then the fallback description.
//   - Tags: TrackInfo.Tags joined with ", ", then the fallback tags.
//
// Values are substituted verbatim. The template is a text/template, which
// performs no escaping.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/massey-audio/upload-processor/internal/core/model"
)

const (
	// DefaultCoverTemplate is the prompt used when configuration does not override it.
	DefaultCoverTemplate = `You are an award-winning concert artist. You have been asked to create the album art for a new single from one of the world's biggest bands. It should be bleeding-edge contemporary, but instantly classic. The song's title is "{{.Title}}", and it's described as "{{.Description}}", and tagged as "{{.Tags}}". The art style should reflect the track. The title should be prominently displayed, in the style of the rest of the art.`

	DefaultFallbackTitle       = "Untitled Track"
	DefaultFallbackDescription = "An experimental and creative musical piece"
	DefaultFallbackTags        = "experimental, creative"

	tagSeparator = ", "
)

// Fields are the values substituted into the template.
type Fields struct {
	Title       string
	Description string
	Tags        string
}

// Builder renders cover prompts. It is immutable after construction and safe
// for concurrent use.
type Builder struct {
	template            *template.Template
	fallbackTitle       string
	fallbackDescription string
	fallbackTags        string
}

// Options configures a Builder. Empty values select the defaults.
type Options struct {
	Template            string
	FallbackTitle       string
	FallbackDescription string
	FallbackTags        string
}

// NewBuilder parses the template in opts and returns a Builder.
//
// Inputs:
//   - opts: Template text and fallback strings; empty fields use the defaults.
//
// Outputs:
//   - *Builder: The ready builder.
//   - error: If the template does not parse.
func NewBuilder(opts Options) (*Builder, error) {
	text := orDefault(opts.Template, DefaultCoverTemplate)
	tmpl, err := template.New("cover").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cover prompt template: %w", err)
	}
	return &Builder{
		template:            tmpl,
		fallbackTitle:       orDefault(opts.FallbackTitle, DefaultFallbackTitle),
		fallbackDescription: orDefault(opts.FallbackDescription, DefaultFallbackDescription),
		fallbackTags:        orDefault(opts.FallbackTags, DefaultFallbackTags),
	}, nil
}

// NewDefaultBuilder returns a Builder with the built-in template and fallbacks.
func NewDefaultBuilder() *Builder {
	b, err := NewBuilder(Options{})
	if err != nil {
		// The built-in template is a constant.
		panic(err)
	}
	return b
}

// Resolve applies the precedence rules without rendering.
func (b *Builder) Resolve(data model.ProjectData) Fields {
	f := Fields{
		Title:       b.fallbackTitle,
		Description: b.fallbackDescription,
		Tags:        b.fallbackTags,
	}

	switch {
	case data.TrackInfo != nil && data.TrackInfo.Title != "":
		f.Title = data.TrackInfo.Title
	case data.AudioMetadata != nil && data.AudioMetadata.Title != "":
		f.Title = data.AudioMetadata.Title
	case data.FallbackTitle != "":
		f.Title = data.FallbackTitle
	}

	if data.TrackInfo != nil {
		if data.TrackInfo.Description != "" {
			f.Description = data.TrackInfo.Description
		}
		if len(data.TrackInfo.Tags) > 0 {
			f.Tags = strings.Join(data.TrackInfo.Tags, tagSeparator)
		}
	}
	return f
}

// Build renders the prompt for data.
func (b *Builder) Build(data model.ProjectData) (string, error) {
	var buf bytes.Buffer
	if err := b.template.Execute(&buf, b.Resolve(data)); err != nil {
		return "", fmt.Errorf("failed to render cover prompt: %w", err)
	}
	return buf.String(), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
