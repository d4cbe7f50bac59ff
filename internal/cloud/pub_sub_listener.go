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

// This file defines the PubSubListener, which receives Cloud Storage object
// notifications from a Pub/Sub subscription and hands them to the processor.
//
// Logic Flow:
//  1. A PubSubListener is created with a subscription ID; the processor is
//     attached later, once the workflow has been built.
//  2. Listen starts a goroutine that blocks on subscription.Receive.
//  3. Each message is traced, filtered on its eventType attribute, decoded as
//     a GCSPubSubNotification and processed as a batch of one.
//  4. Every message is acknowledged, including failures. Failures are logged
//     and never redelivered.
package cloud

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NotificationProcessor handles a batch of change notifications. It is
// implemented by the cover art workflow.
type NotificationProcessor interface {
	ProcessBatch(ctx context.Context, notifications []model.ChangeNotification) []model.Result
}

// PubSubListener pulls GCS notifications from one subscription.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	timeout      time.Duration
	processor    NotificationProcessor
}

// NewPubSubListener creates a listener for subscriptionID.
//
// Inputs:
//   - pubsubClient: An initialized Pub/Sub client.
//   - subscriptionID: The ID of the subscription to pull from.
//   - timeout: Per-message processing timeout; zero disables it.
//   - processor: May be nil and attached later with SetProcessor.
//
// Outputs:
//   - *PubSubListener: The listener.
//   - error: Reserved for validation; always nil today.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	timeout time.Duration,
	processor NotificationProcessor,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)
	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		timeout:      timeout,
		processor:    processor,
	}
	return cmd, nil
}

// SetProcessor attaches the processor once. Later calls are ignored.
func (m *PubSubListener) SetProcessor(processor NotificationProcessor) {
	if m.processor == nil {
		m.processor = processor
	}
}

// Listen starts receiving in the background until ctx is canceled.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening", "subscription", m.subscription.String())

	go func() {
		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			m.HandleMessage(msgCtx, msg.Data, msg.Attributes)
			// No redelivery: the processor has already logged any failure.
			msg.Ack()
		})
		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.String(), "error", err)
		}
	}()
}

// HandleMessage processes one message body. Messages for events other than
// object finalization are ignored.
func (m *PubSubListener) HandleMessage(ctx context.Context, data []byte, attributes map[string]string) []model.Result {
	tracer := otel.Tracer("message-listener")
	spanCtx, span := tracer.Start(ctx, "receive-message")
	defer span.End()

	if eventType, ok := attributes["eventType"]; ok && eventType != GCSEventTypeFinalize {
		span.SetAttributes(attribute.String("event.type", eventType))
		span.SetStatus(codes.Ok, "ignored")
		return nil
	}

	notification, err := ParseGCSNotification(data)
	if err != nil {
		slog.ErrorContext(spanCtx, "dropping unreadable notification", "error", err)
		span.SetStatus(codes.Error, "unreadable notification")
		return nil
	}
	span.SetAttributes(
		attribute.String("bucket", notification.Bucket),
		attribute.String("key", notification.Name),
	)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		spanCtx, cancel = context.WithTimeout(spanCtx, m.timeout)
		defer cancel()
	}

	results := m.processor.ProcessBatch(spanCtx, []model.ChangeNotification{notification.ToChangeNotification()})
	if model.Summarize(results).Failed > 0 {
		span.SetStatus(codes.Error, "failed")
	} else {
		span.SetStatus(codes.Ok, "success")
	}
	return results
}
