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

package main

import (
	"context"

	"github.com/massey-audio/upload-processor/internal/cloud"
)

// SetupListeners attaches the processor to every configured listener and
// starts them. Listeners stop when ctx is canceled.
//
// Inputs:
//   - ctx: The application's root context.
//   - cloudClients: The clients holding the configured listeners.
//   - processor: The workflow the listeners feed.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients, processor cloud.NotificationProcessor) {
	cloudClients.SetProcessor(processor)

	for _, listener := range cloudClients.PubSubListeners {
		listener.Listen(ctx)
	}
	if cloudClients.MinioListener != nil {
		cloudClients.MinioListener.Listen(ctx)
	}
}
