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

// Package main is the AWS Lambda entry point. The function is subscribed to
// s3:ObjectCreated events of the upload bucket, optionally filtered on the
// .mp3, .flac and .wav suffixes; the workflow re-validates every key anyway.
//
// Configuration comes from the TOML files next to the binary (when
// packaged) and from the OPENAI_API_KEY and AWS_REGION variables.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/core/workflow"
	"github.com/massey-audio/upload-processor/internal/telemetry"
)

// Handler processes one S3 event. It never returns an error: per-notification
// failures are logged by the workflow and a retry of the whole event would
// only repeat them.
type Handler struct {
	processor cloud.NotificationProcessor
}

// NewHandler wraps the processor.
func NewHandler(processor cloud.NotificationProcessor) *Handler {
	return &Handler{processor: processor}
}

// Handle is registered with lambda.Start.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (model.Summary, error) {
	notifications := cloud.S3EventNotifications(event)
	slog.InfoContext(ctx, "received S3 event", "records", len(event.Records), "notifications", len(notifications))

	results := h.processor.ProcessBatch(ctx, notifications)
	return model.Summarize(results), nil
}

func main() {
	ctx := context.Background()

	config, err := cloud.LoadAppConfig()
	if err != nil {
		log.Fatal(err)
	}

	if _, err := telemetry.SetupLogging(config.Telemetry); err != nil {
		log.Fatal(err)
	}

	// Spans end with each invocation; the providers live as long as the
	// execution environment.
	if _, err := telemetry.SetupOpenTelemetry(ctx, config); err != nil {
		log.Fatal(err)
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		log.Fatal(err)
	}

	coverArt, err := workflow.NewCoverArtWorkflow(config, cloudClients)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("lambda handler ready", "image_model", config.ImageModel.Model)
	lambda.Start(NewHandler(coverArt).Handle)
}
