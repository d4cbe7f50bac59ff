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

package model

// GetExampleTrackInfo returns a fully populated sidecar. It documents the
// info.json format for operators (the verify command prints it) and seeds
// test fixtures.
//
// Outputs:
//   - *TrackInfo: A pointer to a hardcoded TrackInfo.
func GetExampleTrackInfo() *TrackInfo {
	return &TrackInfo{
		ID:               "neon-dusk",
		Title:            "Neon Dusk",
		DateCreated:      "2024-06-01T20:15:00Z",
		BPM:              104,
		Key:              "F# minor",
		ChordProgression: "i - VI - III - VII",
		Description:      "synthwave nightdrive",
		Tags:             []string{"synth", "retro"},
		Notes:            "Bounce of the second mix.",
		IsFeatured:       true,
		IsHidden:         false,
		Duration:         214.5,
	}
}
