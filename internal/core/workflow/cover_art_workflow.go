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

// Package workflow assembles commands into the cover art pipeline and drives
// it over batches of notifications.
//
// Logic Flow (per notification):
//  1. decode-object-key: undo the trigger's key encoding.
//  2. classify-upload: skip keys that are not "<folder>/<file>.{mp3,flac,wav}".
//  3. check-existing-cover: skip folders that already have a cover.
//  4. read-track-info: load info.json, if any.
//  5. read-audio-metadata: parse the uploaded audio, if possible.
//  6. assemble-project-data: merge the lookups with the fallback title.
//  7. build-cover-prompt: render the prompt.
//  8. generate-cover-image: request one image.
//  9. download-cover-image: fetch the image bytes.
//  10. upload-cover: write {folder}/cover.png.
//
// Notifications in a batch are handled one after another and independently:
// a failure or a panic in one is logged and the next one is attempted.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/commands"
	"github.com/massey-audio/upload-processor/internal/core/cor"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/core/prompt"
)

// CoverArtWorkflow is the upload event processor. It is built once at startup
// and is safe to share: all per-notification state lives in the chain context.
type CoverArtWorkflow struct {
	cor.BaseCommand
	config      *cloud.Config
	store       cloud.ObjectStore
	generator   cloud.ImageGenerator
	fetcher     cloud.ImageFetcher
	audioReader cloud.AudioMetadataReader
	builder     *prompt.Builder
	chain       cor.Chain // The underlying chain of commands to be executed.
}

// NewCoverArtWorkflow builds the pipeline from the configuration and the
// shared clients.
//
// Inputs:
//   - config: The application configuration (image model and prompt templates).
//   - serviceClients: The shared clients; ObjectStore, ImageGenerator,
//     ImageFetcher and AudioReader must be set.
//
// Outputs:
//   - *CoverArtWorkflow: The ready workflow.
//   - error: If the prompt template does not parse.
func NewCoverArtWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients) (*CoverArtWorkflow, error) {
	builder, err := prompt.NewBuilder(prompt.Options{
		Template:            config.PromptTemplates.CoverPrompt,
		FallbackTitle:       config.PromptTemplates.FallbackTitle,
		FallbackDescription: config.PromptTemplates.FallbackDescription,
		FallbackTags:        config.PromptTemplates.FallbackTags,
	})
	if err != nil {
		return nil, err
	}

	w := &CoverArtWorkflow{
		BaseCommand: *cor.NewBaseCommand("cover-art-workflow"),
		config:      config,
		store:       serviceClients.ObjectStore,
		generator:   serviceClients.ImageGenerator,
		fetcher:     serviceClients.ImageFetcher,
		audioReader: serviceClients.AudioReader,
		builder:     builder,
	}
	w.initializeChain()
	return w, nil
}

func (w *CoverArtWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	out.AddCommand(commands.NewObjectKeyDecoder("decode-object-key"))
	out.AddCommand(commands.NewUploadClassifier("classify-upload"))
	out.AddCommand(commands.NewCoverExistenceCheck("check-existing-cover", w.store))
	out.AddCommand(commands.NewTrackInfoReader("read-track-info", w.store))
	out.AddCommand(commands.NewAudioMetadataReader("read-audio-metadata", w.store, w.audioReader))
	out.AddCommand(commands.NewProjectDataAssembler("assemble-project-data"))
	out.AddCommand(commands.NewCoverPromptBuilder("build-cover-prompt", w.builder))
	out.AddCommand(commands.NewCoverImageGenerator("generate-cover-image", w.generator, commands.ImageParameters{
		Model:   w.config.ImageModel.Model,
		Size:    w.config.ImageModel.Size,
		Quality: w.config.ImageModel.Quality,
	}))
	out.AddCommand(commands.NewCoverImageDownloader("download-cover-image", w.fetcher))
	out.AddCommand(commands.NewCoverUpload("upload-cover", w.store))

	w.chain = out
}

// IsExecutable requires a notification as input.
func (w *CoverArtWorkflow) IsExecutable(context cor.Context) bool {
	if !w.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(w.GetInputParam()).(model.ChangeNotification)
	return ok
}

// Execute runs the chain against a prepared context.
func (w *CoverArtWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Process handles one notification and reports what happened. It never
// panics; a panic inside the chain becomes a failed result.
func (w *CoverArtWorkflow) Process(ctx context.Context, notification model.ChangeNotification) (result model.Result) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, notification)

	defer func() {
		if r := recover(); r != nil {
			key, _ := chainCtx.Get(model.GetDecodedKeyName()).(string)
			w.GetErrorCounter().Add(ctx, 1)
			result = model.Failed(notification, key, fmt.Errorf("panic while processing notification: %v", r))
		}
	}()

	w.Execute(chainCtx)

	key, _ := chainCtx.Get(model.GetDecodedKeyName()).(string)
	switch {
	case chainCtx.HasErrors():
		w.GetErrorCounter().Add(ctx, 1)
		return model.Failed(notification, key, joinErrors(chainCtx.GetErrors()))
	case chainCtx.IsSkipped():
		w.GetSkipCounter().Add(ctx, 1)
		return model.Skipped(notification, key, chainCtx.GetSkipReason())
	default:
		cover, ok := chainCtx.Get(model.GetCoverName()).(*model.GeneratedCover)
		if !ok {
			w.GetErrorCounter().Add(ctx, 1)
			return model.Failed(notification, key, errors.New("chain completed without storing a cover"))
		}
		w.GetSuccessCounter().Add(ctx, 1)
		return model.Processed(notification, key, cover.Key)
	}
}

// ProcessBatch handles notifications sequentially and logs every result.
// When ctx is done the remaining notifications are not attempted and are
// absent from the returned slice.
func (w *CoverArtWorkflow) ProcessBatch(ctx context.Context, notifications []model.ChangeNotification) []model.Result {
	batchID := uuid.NewString()
	results := make([]model.Result, 0, len(notifications))

	for i, notification := range notifications {
		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "batch interrupted, remaining notifications not attempted",
				"batch", batchID, "remaining", len(notifications)-i, "error", err)
			break
		}
		result := w.Process(ctx, notification)
		logResult(ctx, batchID, result)
		results = append(results, result)
	}

	summary := model.Summarize(results)
	slog.InfoContext(ctx, "batch complete",
		"batch", batchID, "notifications", len(notifications),
		"processed", summary.Processed, "skipped", summary.Skipped, "failed", summary.Failed)
	return results
}

func logResult(ctx context.Context, batchID string, result model.Result) {
	attrs := []any{
		"batch", batchID,
		"bucket", result.Notification.Bucket,
		"key", result.Key,
		"raw_key", result.Notification.Key,
	}
	switch result.Status {
	case model.StatusSkipped:
		slog.InfoContext(ctx, "notification skipped", append(attrs, "reason", result.Reason)...)
	case model.StatusProcessed:
		slog.InfoContext(ctx, "notification processed", append(attrs, "cover", result.CoverKey)...)
	default:
		slog.ErrorContext(ctx, "notification failed", append(attrs, "error", result.Err)...)
	}
}

// joinErrors orders the recorded errors by command name so messages are stable.
func joinErrors(errs map[string]error) error {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]error, 0, len(names))
	for _, name := range names {
		out = append(out, fmt.Errorf("%s: %w", name, errs[name]))
	}
	return errors.Join(out...)
}
