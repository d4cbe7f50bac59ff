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

package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/massey-audio/upload-processor/internal/audio"
	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/commands"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/core/workflow"
	"github.com/massey-audio/upload-processor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bucket   = "promoter-2"
	imageURL = "https://images.example.com/generated/cover.png"
)

type fixture struct {
	store     *testutil.MemoryObjectStore
	generator *testutil.FakeImageGenerator
	fetcher   *testutil.FakeImageFetcher
	workflow  *workflow.CoverArtWorkflow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     testutil.NewMemoryObjectStore(),
		generator: testutil.NewFakeImageGenerator(imageURL),
		fetcher:   testutil.NewFakeImageFetcher(imageURL, testutil.PNGBytes),
	}
	w, err := workflow.NewCoverArtWorkflow(testutil.GetConfig(), &cloud.ServiceClients{
		ObjectStore:    f.store,
		ImageGenerator: f.generator,
		ImageFetcher:   f.fetcher,
		AudioReader:    audio.NewReader(),
	})
	require.NoError(t, err)
	f.workflow = w
	return f
}

func notification(key string) model.ChangeNotification {
	return model.ChangeNotification{Bucket: bucket, Key: key}
}

func (f *fixture) process(key string) model.Result {
	return f.workflow.Process(context.Background(), notification(key))
}

func TestProcessesAudioUpload(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(bucket, "Neon Dusk/neon.mp3", testutil.BuildMP3("", 10), "audio/mpeg")
	f.store.Seed(bucket, "Neon Dusk/info.json", []byte(testutil.GetTestTrackInfoText()), "application/json")

	ctx, span := tracer.Start(context.Background(), "process-upload")
	defer span.End()

	result := f.workflow.Process(ctx, notification("Neon+Dusk/neon.mp3"))
	logger.InfoContext(ctx, "processed upload", "status", string(result.Status), "cover", result.CoverKey)

	require.Equal(t, model.StatusProcessed, result.Status, "%v", result.Err)
	assert.Equal(t, "Neon Dusk/neon.mp3", result.Key)
	assert.Equal(t, "Neon Dusk/cover.png", result.CoverKey)

	require.Len(t, f.store.Puts, 1)
	put := f.store.Puts[0]
	assert.Equal(t, bucket, put.Bucket)
	assert.Equal(t, "Neon Dusk/cover.png", put.Key)
	assert.Equal(t, "image/png", put.ContentType)
	assert.Equal(t, testutil.PNGBytes, put.Data)

	require.Equal(t, 1, f.generator.Calls())
	request := f.generator.Requests[0]
	assert.Equal(t, "dall-e-3", request.Model)
	assert.Equal(t, "1024x1024", request.Size)
	assert.Equal(t, "standard", request.Quality)
	assert.Equal(t, 1, request.Count)
	assert.Contains(t, request.Prompt, `"Neon Dusk"`)
	assert.Contains(t, request.Prompt, `"synthwave nightdrive"`)
	assert.Contains(t, request.Prompt, `"synth, retro"`)

	assert.Equal(t, []string{imageURL}, f.fetcher.Fetched)
	assert.Equal(t, []string{"Neon Dusk/"}, f.store.Lists)
}

func TestSkipsKeysOutsideProjectFolder(t *testing.T) {
	for _, key := range []string{"a/b/c.mp3", "justafile.mp3"} {
		f := newFixture(t)
		result := f.process(key)
		assert.Equal(t, model.StatusSkipped, result.Status, key)
		assert.Equal(t, commands.ReasonNotInProjectFolder, result.Reason, key)
		assert.Empty(t, f.store.Puts, key)
		assert.Empty(t, f.store.Lists, key)
		assert.Empty(t, f.store.Gets, key)
		assert.Zero(t, f.generator.Calls(), key)
	}
}

func TestSkipsNonAudioExtensions(t *testing.T) {
	for _, key := range []string{"project/track.ogg", "project/info.json", "project/cover.png", "project/noext"} {
		f := newFixture(t)
		result := f.process(key)
		assert.Equal(t, model.StatusSkipped, result.Status, key)
		assert.Equal(t, commands.ReasonNotAudio, result.Reason, key)
		assert.Empty(t, f.store.Puts, key)
		assert.Zero(t, f.generator.Calls(), key)
	}
}

func TestAcceptsExtensionsCaseInsensitively(t *testing.T) {
	for _, key := range []string{"p/a.MP3", "p/b.Flac", "p/c.WAV"} {
		f := newFixture(t)
		assert.Equal(t, model.StatusProcessed, f.process(key).Status, key)
	}
}

func TestSkipsWhenCoverExists(t *testing.T) {
	for _, cover := range []string{"project/cover.png", "project/cover.jpg", "project/COVER.PNG"} {
		f := newFixture(t)
		f.store.Seed(bucket, cover, testutil.PNGBytes, "image/png")

		result := f.process("project/new.wav")
		assert.Equal(t, model.StatusSkipped, result.Status, cover)
		assert.Equal(t, commands.ReasonCoverExists, result.Reason, cover)
		assert.Empty(t, f.store.Puts, cover)
		assert.Zero(t, f.generator.Calls(), cover)
	}
}

func TestIgnoresCoversInNestedFolders(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(bucket, "project/old/cover.png", testutil.PNGBytes, "image/png")
	f.store.Seed(bucket, "project/cover.jpeg", testutil.PNGBytes, "image/jpeg")

	assert.Equal(t, model.StatusProcessed, f.process("project/new.wav").Status)
}

func TestFallbackTitleFromFileName(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(bucket, "drive/midnight_drive.mp3", testutil.BuildMP3("", 5), "audio/mpeg")

	require.Equal(t, model.StatusProcessed, f.process("drive/midnight_drive.mp3").Status)
	prompt := f.generator.Requests[0].Prompt
	assert.Contains(t, prompt, `The song's title is "midnight_drive"`)
	assert.Contains(t, prompt, `"An experimental and creative musical piece"`)
	assert.Contains(t, prompt, `"experimental, creative"`)
}

func TestEmbeddedTitleBeatsFileName(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(bucket, "drive/midnight_drive.mp3", testutil.BuildMP3("Midnight Drive (Radio Edit)", 5), "audio/mpeg")

	require.Equal(t, model.StatusProcessed, f.process("drive/midnight_drive.mp3").Status)
	assert.Contains(t, f.generator.Requests[0].Prompt, `"Midnight Drive (Radio Edit)"`)
}

func TestUntitledTrackFallback(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, model.StatusProcessed, f.process("project/.mp3").Status)
	assert.Contains(t, f.generator.Requests[0].Prompt, `The song's title is "Untitled Track"`)
}

func TestCorruptTrackInfoIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(bucket, "p/info.json", []byte(`{"title": "Neon`), "application/json")
	f.store.Seed(bucket, "p/song.flac", []byte("not really flac"), "audio/flac")

	require.Equal(t, model.StatusProcessed, f.process("p/song.flac").Status)
	assert.Contains(t, f.generator.Requests[0].Prompt, `"song"`)
}

func TestMistypedTrackInfoFieldsKeepTitle(t *testing.T) {
	f := newFixture(t)
	f.store.Seed(bucket, "p/info.json", []byte(`{"title":"Neon Dusk","description":"synthwave nightdrive",`+
		`"tags":["synth","retro"],"bpm":"120","duration":"3:45"}`), "application/json")

	require.Equal(t, model.StatusProcessed, f.process("p/song.mp3").Status)
	prompt := f.generator.Requests[0].Prompt
	assert.Contains(t, prompt, `"Neon Dusk"`)
	assert.Contains(t, prompt, `"synthwave nightdrive"`)
	assert.Contains(t, prompt, `"synth, retro"`)
}

func TestListingFailureAssumesNoCover(t *testing.T) {
	f := newFixture(t)
	f.store.ListErr = errors.New("access denied")

	assert.Equal(t, model.StatusProcessed, f.process("p/song.mp3").Status)
	assert.Len(t, f.store.Puts, 1)
}

func TestEmptyImageURLFailsWithoutAbortingBatch(t *testing.T) {
	f := newFixture(t)
	f.generator.URL = ""

	results := f.workflow.ProcessBatch(context.Background(), []model.ChangeNotification{
		notification("first/song.mp3"),
		notification("second/song.mp3"),
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, model.StatusFailed, r.Status)
		assert.ErrorIs(t, r.Err, cloud.ErrNoImageURL)
	}
	assert.Equal(t, 2, f.generator.Calls())
	assert.Empty(t, f.store.Puts)
	assert.Empty(t, f.fetcher.Fetched)
}

func TestFailuresDoNotAffectOtherNotifications(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Images = map[string][]byte{}

	results := f.workflow.ProcessBatch(context.Background(), []model.ChangeNotification{
		notification("one/song.mp3"),
		notification("bad%zz/song.mp3"),
		notification("a/b/c.mp3"),
	})
	require.Len(t, results, 3)
	assert.Equal(t, model.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Err.Error(), "404")
	assert.Equal(t, model.StatusFailed, results[1].Status)
	assert.Empty(t, results[1].Key)
	assert.Equal(t, model.StatusSkipped, results[2].Status)
	assert.Empty(t, f.store.Puts)
}

func TestStoreWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.store.PutErr = errors.New("bucket is read-only")

	result := f.process("p/song.mp3")
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.Err.Error(), "bucket is read-only")
}

func TestPanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	f.generator.Panic = "generator exploded"

	results := f.workflow.ProcessBatch(context.Background(), []model.ChangeNotification{
		notification("p/one.mp3"),
		notification("p/two.txt"),
	})
	require.Len(t, results, 2)
	assert.Equal(t, model.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Err.Error(), "generator exploded")
	assert.Equal(t, "p/one.mp3", results[0].Key)
	assert.Equal(t, model.StatusSkipped, results[1].Status)
}

func TestIdempotentSecondRun(t *testing.T) {
	f := newFixture(t)
	n := notification("p/song.mp3")

	first := f.workflow.ProcessBatch(context.Background(), []model.ChangeNotification{n})
	second := f.workflow.ProcessBatch(context.Background(), []model.ChangeNotification{n})

	assert.Equal(t, model.StatusProcessed, first[0].Status)
	assert.Equal(t, model.StatusSkipped, second[0].Status)
	assert.Equal(t, commands.ReasonCoverExists, second[0].Reason)
	assert.Equal(t, 1, f.generator.Calls())
	assert.Len(t, f.store.Puts, 1)
}

func TestCanceledContextStopsBatch(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.workflow.ProcessBatch(ctx, []model.ChangeNotification{
		notification("p/one.mp3"),
		notification("p/two.mp3"),
	})
	assert.Empty(t, results)
	assert.Zero(t, f.generator.Calls())
	assert.Empty(t, f.store.Lists)
}

func TestGCSNotificationRoundTrip(t *testing.T) {
	f := newFixture(t)
	gcs, err := cloud.ParseGCSNotification([]byte(testutil.GetTestGCSMessageText()))
	require.NoError(t, err)

	result := f.workflow.Process(context.Background(), gcs.ToChangeNotification())
	require.Equal(t, model.StatusProcessed, result.Status, "%v", result.Err)
	assert.Equal(t, "Late Night/take 2+3.wav", result.Key)
	assert.Equal(t, "Late Night/cover.png", result.CoverKey)
}

func TestInvalidTemplate(t *testing.T) {
	config := testutil.GetConfig()
	config.PromptTemplates.CoverPrompt = "{{.Title"
	_, err := workflow.NewCoverArtWorkflow(config, &cloud.ServiceClients{})
	assert.Error(t, err)
}
