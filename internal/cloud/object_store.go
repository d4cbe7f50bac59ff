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

package cloud

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by every ObjectStore when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is the subset of object storage the processor needs. Every
// bucket is named per call because the bucket comes from the notification.
type ObjectStore interface {
	// List returns the objects directly under prefix. Listing is
	// non-recursive: keys below a further "/" are not returned.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// Get returns the full content of an object, or ErrObjectNotFound.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Put writes data to key with the given content type, replacing any
	// existing object.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// BucketLister is implemented by stores that can enumerate the buckets the
// current credentials can see. Only the verify command needs it.
type BucketLister interface {
	ListBuckets(ctx context.Context) ([]string, error)
}

// listDelimiter restricts listings to a single folder level.
const listDelimiter = "/"
