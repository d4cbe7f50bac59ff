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

// Package commands provides the concrete Commands the cover art workflow is
// built from. Each command does one step of handling an upload notification.
// They share state through the chain context: the primary value flows from
// CtxOut to the next command's CtxIn, and anything later steps need
// besides it is stored under the well-known keys of the model package.
//
// This file defines the first command, which decodes the object key.
//
// Logic Flow:
//  1. Read the ChangeNotification from the context input.
//  2. Replace every '+' with a space, then percent-decode.
//  3. Store the notification and the decoded key under their well-known keys
//     and pass the decoded key on.
package commands

import (
	"log/slog"

	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
)

// ObjectKeyDecoder turns the trigger's URL-encoded key into the real key.
type ObjectKeyDecoder struct {
	cor.BaseCommand
}

// NewObjectKeyDecoder is the constructor for the ObjectKeyDecoder command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *ObjectKeyDecoder: A pointer to the newly instantiated command.
func NewObjectKeyDecoder(name string) *ObjectKeyDecoder {
	return &ObjectKeyDecoder{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute decodes the key. A malformed escape sequence fails the chain.
func (c *ObjectKeyDecoder) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(model.ChangeNotification)
	context.Add(model.GetNotificationName(), in)

	key, err := model.DecodeObjectKey(in.Key)
	if err != nil {
		slog.ErrorContext(context.GetContext(), "failed to decode object key",
			"command", c.GetName(), "bucket", in.Bucket, "key", in.Key, "error", err)
		c.Fail(context, err)
		return
	}

	c.Succeed(context)
	context.Add(model.GetDecodedKeyName(), key)
	context.Add(c.GetOutputParam(), key)
}
