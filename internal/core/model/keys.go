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

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	// TrackInfoFileName is the sidecar looked up in every project folder.
	TrackInfoFileName = "info.json"
	// CoverFileName is the fixed name of the generated artifact.
	CoverFileName = "cover.png"
	// CoverContentType is written regardless of the encoding the image service returned.
	CoverContentType = "image/png"
)

// audioExtensions is the accepted set, compared after lowercasing.
var audioExtensions = map[string]struct{}{
	"mp3":  {},
	"flac": {},
	"wav":  {},
}

// DecodeObjectKey undoes the form encoding S3-style triggers apply to keys:
// every '+' becomes a space first, then percent escapes are decoded. A literal
// plus in a key arrives as "%2B" and survives the first step.
func DecodeObjectKey(key string) (string, error) {
	decoded, err := url.PathUnescape(strings.ReplaceAll(key, "+", " "))
	if err != nil {
		return "", fmt.Errorf("failed to decode object key %q: %w", key, err)
	}
	return decoded, nil
}

// SplitProjectKey splits a decoded key into project folder and file name. It
// reports false unless the key has exactly two '/' separated segments.
func SplitProjectKey(key string) (folder string, file string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Extension returns the text after the last '.', lowercased, or "" when the
// name has no dot.
func Extension(fileName string) string {
	i := strings.LastIndex(fileName, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(fileName[i+1:])
}

// IsAudioFile reports whether the file name carries an accepted audio extension.
func IsAudioFile(fileName string) bool {
	_, ok := audioExtensions[Extension(fileName)]
	return ok
}

// IsCoverFile reports whether an object name counts as an existing cover:
// base name starting with "cover." and ending in ".jpg" or ".png", ignoring case.
func IsCoverFile(objectName string) bool {
	name := strings.ToLower(path.Base(objectName))
	return strings.HasPrefix(name, "cover.") &&
		(strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".png"))
}

// FallbackTitle strips the final extension from a file name. A name that is
// only an extension (".mp3") yields "".
func FallbackTitle(fileName string) string {
	i := strings.LastIndex(fileName, ".")
	if i < 0 || i == len(fileName)-1 || strings.Contains(fileName[i+1:], "/") {
		return fileName
	}
	return fileName[:i]
}

// ProjectPrefix is the listing prefix for a project folder.
func ProjectPrefix(folder string) string {
	return folder + "/"
}

// TrackInfoKey is the key of the project's info.json sidecar.
func TrackInfoKey(folder string) string {
	return folder + "/" + TrackInfoFileName
}

// CoverKey is the key the generated cover is written to.
func CoverKey(folder string) string {
	return folder + "/" + CoverFileName
}
