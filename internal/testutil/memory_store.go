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

package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/massey-audio/upload-processor/internal/cloud"
)

// StoredObject is one object held by MemoryObjectStore.
type StoredObject struct {
	Data        []byte
	ContentType string
}

// PutCall records one Put.
type PutCall struct {
	Bucket      string
	Key         string
	Data        []byte
	ContentType string
}

// MemoryObjectStore is an in-memory cloud.ObjectStore with delimited listings
// and call recording. Errors can be injected per operation.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string]map[string]StoredObject // bucket -> key -> object

	ListErr error
	GetErr  map[string]error // keyed by object key
	PutErr  error

	Lists []string // prefixes listed
	Gets  []string // keys read
	Puts  []PutCall
}

// NewMemoryObjectStore creates an empty store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: make(map[string]map[string]StoredObject),
		GetErr:  make(map[string]error),
	}
}

// Seed stores an object without recording a Put.
func (s *MemoryObjectStore) Seed(bucket, key string, data []byte, contentType string) *MemoryObjectStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[bucket] == nil {
		s.objects[bucket] = make(map[string]StoredObject)
	}
	s.objects[bucket][key] = StoredObject{Data: data, ContentType: contentType}
	return s
}

// Object returns a stored object.
func (s *MemoryObjectStore) Object(bucket, key string) (StoredObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[bucket][key]
	return obj, ok
}

func (s *MemoryObjectStore) List(_ context.Context, bucket, prefix string) ([]cloud.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lists = append(s.Lists, prefix)
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var out []cloud.ObjectInfo
	for key, obj := range s.objects[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if strings.Contains(key[len(prefix):], "/") {
			continue
		}
		out = append(out, cloud.ObjectInfo{Key: key, Size: int64(len(obj.Data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryObjectStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets = append(s.Gets, key)
	if err := s.GetErr[key]; err != nil {
		return nil, err
	}
	obj, ok := s.objects[bucket][key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, cloud.ErrObjectNotFound)
	}
	return obj.Data, nil
}

func (s *MemoryObjectStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts = append(s.Puts, PutCall{Bucket: bucket, Key: key, Data: data, ContentType: contentType})
	if s.PutErr != nil {
		return s.PutErr
	}
	if s.objects[bucket] == nil {
		s.objects[bucket] = make(map[string]StoredObject)
	}
	s.objects[bucket][key] = StoredObject{Data: data, ContentType: contentType}
	return nil
}

func (s *MemoryObjectStore) ListBuckets(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
