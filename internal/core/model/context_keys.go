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

// Well-known chain context keys. Commands store their results under these in
// addition to CtxOut so that later commands can reach them directly.
const (
	ctxNotification  = "__NOTIFICATION__"
	ctxDecodedKey    = "__DECODED_KEY__"
	ctxAudioUpload   = "__AUDIO_UPLOAD__"
	ctxTrackInfo     = "__TRACK_INFO__"
	ctxAudioMetadata = "__AUDIO_METADATA__"
	ctxProjectData   = "__PROJECT_DATA__"
	ctxPrompt        = "__PROMPT__"
	ctxImageURL      = "__IMAGE_URL__"
	ctxCover         = "__COVER__"
)

func GetNotificationName() string  { return ctxNotification }
func GetDecodedKeyName() string    { return ctxDecodedKey }
func GetAudioUploadName() string   { return ctxAudioUpload }
func GetTrackInfoName() string     { return ctxTrackInfo }
func GetAudioMetadataName() string { return ctxAudioMetadata }
func GetProjectDataName() string   { return ctxProjectData }
func GetPromptName() string        { return ctxPrompt }
func GetImageURLName() string      { return ctxImageURL }
func GetCoverName() string         { return ctxCover }
