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

import "encoding/json"

// Status is the outcome of handling one notification.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Result describes what happened to one notification. Reason is set for
// skipped results, Err for failed ones, CoverKey for processed ones.
type Result struct {
	Notification ChangeNotification
	Key          string // Decoded key; empty if decoding failed.
	Status       Status
	Reason       string
	Err          error
	CoverKey     string
}

// Skipped builds a skipped Result.
func Skipped(n ChangeNotification, key string, reason string) Result {
	return Result{Notification: n, Key: key, Status: StatusSkipped, Reason: reason}
}

// Processed builds a processed Result.
func Processed(n ChangeNotification, key string, coverKey string) Result {
	return Result{Notification: n, Key: key, Status: StatusProcessed, CoverKey: coverKey}
}

// Failed builds a failed Result.
func Failed(n ChangeNotification, key string, err error) Result {
	return Result{Notification: n, Key: key, Status: StatusFailed, Err: err}
}

// MarshalJSON renders Err as its message so results can be returned from the
// webhook as they are.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Bucket   string `json:"bucket"`
		Key      string `json:"key"`
		Status   Status `json:"status"`
		Reason   string `json:"reason,omitempty"`
		Error    string `json:"error,omitempty"`
		CoverKey string `json:"cover_key,omitempty"`
	}{
		Bucket:   r.Notification.Bucket,
		Key:      r.Key,
		Status:   r.Status,
		Reason:   r.Reason,
		CoverKey: r.CoverKey,
	}
	if out.Key == "" {
		out.Key = r.Notification.Key
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Summary counts results by status.
type Summary struct {
	Skipped   int `json:"skipped"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Summarize tallies a batch of results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusSkipped:
			s.Skipped++
		case StatusProcessed:
			s.Processed++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
