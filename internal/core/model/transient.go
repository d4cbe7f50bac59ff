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

// Package model defines the data that flows through the upload processor.
// Nothing here is persisted: every value is built for one notification and
// dropped once the notification has been handled. The only durable effect of
// the processor is the cover object it writes to the store.
package model

import (
	"encoding/json"
	"time"
)

// ChangeNotification is one object-creation event as delivered by a trigger.
// Key is kept exactly as the trigger sent it, which for S3-style sources is
// URL-encoded with '+' standing for a space.
type ChangeNotification struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// AudioUpload is a notification that passed key decoding and classification:
// an audio file directly inside a top-level project folder.
type AudioUpload struct {
	Bucket        string // Bucket named by the notification.
	Key           string // Decoded object key, "<ProjectFolder>/<FileName>".
	ProjectFolder string // First key segment.
	FileName      string // Second key segment.
}

// TrackInfo mirrors the optional info.json sidecar of a project folder. Only
// Title, Description and Tags feed the prompt; the remaining fields are part
// of the sidecar format and are decoded but not used. Field names match
// exactly, unlike the default encoding/json behavior.
type TrackInfo struct {
	ID               string   `json:"id,omitempty"`
	Title            string   `json:"title,omitempty"`
	DateCreated      string   `json:"dateCreated,omitempty"`
	BPM              float64  `json:"bpm,omitempty"`
	Key              string   `json:"key,omitempty"`
	ChordProgression string   `json:"chordProgression,omitempty"`
	Description      string   `json:"description,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	IsFeatured       bool     `json:"isFeatured,omitempty"`
	IsHidden         bool     `json:"isHidden,omitempty"`
	Duration         float64  `json:"duration,omitempty"`
}

// UnmarshalJSON decodes the sidecar one field at a time. A field holding an
// unexpected JSON type is dropped and the rest of the sidecar is kept; only a
// body that is not a JSON object is an error.
func (t *TrackInfo) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var info TrackInfo
	for name, raw := range fields {
		switch name {
		case "id":
			decodeField(raw, &info.ID)
		case "title":
			decodeField(raw, &info.Title)
		case "dateCreated":
			decodeField(raw, &info.DateCreated)
		case "bpm":
			decodeField(raw, &info.BPM)
		case "key":
			decodeField(raw, &info.Key)
		case "chordProgression":
			decodeField(raw, &info.ChordProgression)
		case "description":
			decodeField(raw, &info.Description)
		case "tags":
			decodeField(raw, &info.Tags)
		case "notes":
			decodeField(raw, &info.Notes)
		case "isFeatured":
			decodeField(raw, &info.IsFeatured)
		case "isHidden":
			decodeField(raw, &info.IsHidden)
		case "duration":
			decodeField(raw, &info.Duration)
		}
	}
	*t = info
	return nil
}

// decodeField assigns raw to dst only when it decodes cleanly, so a
// half-decoded value never leaks into the result.
func decodeField[T any](raw json.RawMessage, dst *T) {
	var value T
	if err := json.Unmarshal(raw, &value); err == nil {
		*dst = value
	}
}

// AudioMetadata is what the audio reader could extract from the uploaded file.
// Zero values mean "unknown".
type AudioMetadata struct {
	Duration time.Duration // Playback length, when the container exposes it.
	Format   string        // Container name, e.g. "MPEG", "FLAC", "WAVE".
	Title    string        // Title embedded in the file's own tags.
}

// ProjectData is the merged view the prompt is built from. TrackInfo and
// AudioMetadata are nil when their lookups failed.
type ProjectData struct {
	TrackInfo     *TrackInfo
	AudioMetadata *AudioMetadata
	FallbackTitle string // File name without its extension.
}

// GeneratedCover is the artifact written back to the store.
type GeneratedCover struct {
	Key         string
	Data        []byte
	ContentType string
}

// ImageRequest is the provider-neutral image generation request.
type ImageRequest struct {
	Model   string
	Prompt  string
	Size    string // e.g. "1024x1024".
	Quality string // e.g. "standard".
	Count   int    // Always 1 for covers.
}
