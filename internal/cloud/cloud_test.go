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

package cloud_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3EventNotifications(t *testing.T) {
	event, err := cloud.ParseS3Event([]byte(testutil.GetTestS3EventText()))
	testutil.HandleErr(err, t)

	notifications := cloud.S3EventNotifications(event)
	require.Len(t, notifications, 1)
	assert.Equal(t, "promoter-2", notifications[0].Bucket)
	assert.Equal(t, "Neon+Dusk/neon_dusk+%28final%29.mp3", notifications[0].Key)

	key, err := model.DecodeObjectKey(notifications[0].Key)
	testutil.HandleErr(err, t)
	assert.Equal(t, "Neon Dusk/neon_dusk (final).mp3", key)
}

func TestS3EventDropsIncompleteRecords(t *testing.T) {
	event, err := cloud.ParseS3Event([]byte(`{"Records":[
		{"s3":{"bucket":{"name":"b"},"object":{"key":""}}},
		{"s3":{"bucket":{"name":""},"object":{"key":"p/a.mp3"}}},
		{"s3":{"bucket":{"name":"b"},"object":{"key":"p/a.mp3"}}}
	]}`))
	testutil.HandleErr(err, t)
	assert.Equal(t, []model.ChangeNotification{{Bucket: "b", Key: "p/a.mp3"}}, cloud.S3EventNotifications(event))

	_, err = cloud.ParseS3Event([]byte(`{"Records":`))
	assert.Error(t, err)
}

func TestGCSNotification(t *testing.T) {
	n, err := cloud.ParseGCSNotification([]byte(testutil.GetTestGCSMessageText()))
	testutil.HandleErr(err, t)
	assert.Equal(t, "Late Night/take 2+3.wav", n.Name)

	change := n.ToChangeNotification()
	assert.Equal(t, "promoter-2", change.Bucket)
	key, err := model.DecodeObjectKey(change.Key)
	testutil.HandleErr(err, t)
	assert.Equal(t, n.Name, key)

	_, err = cloud.ParseGCSNotification([]byte(`{"bucket":"b"}`))
	assert.Error(t, err)
	_, err = cloud.ParseGCSNotification([]byte(`nope`))
	assert.Error(t, err)
}

func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.SetupOS(t, dir)
	testutil.WriteConfigFile(t, dir, ".env.toml", `
[application]
region = "eu-west-1"

[storage]
provider = "minio"
endpoint = "localhost:9000"
bucket = "promoter-2"

[image_model]
api_key = "from-file"
size = "1792x1024"

[topic_subscriptions.uploads]
name = "uploads-sub"
timeout_in_seconds = 30
`)
	testutil.WriteConfigFile(t, dir, ".env.test.toml", `
[image_model]
quality = "hd"

[prompt_templates]
fallback_title = "Nameless"
`)
	t.Setenv(cloud.EnvOpenAIAPIKey, "sk-env")

	config, err := cloud.LoadAppConfig()
	testutil.HandleErr(err, t)

	assert.Equal(t, "eu-west-1", config.Application.Region)
	assert.Equal(t, cloud.StorageProviderMinio, config.Storage.Provider)
	assert.True(t, config.Storage.UseSSL)
	assert.Equal(t, "sk-env", config.ImageModel.APIKey)
	assert.Equal(t, "dall-e-3", config.ImageModel.Model)
	assert.Equal(t, "1792x1024", config.ImageModel.Size)
	assert.Equal(t, "hd", config.ImageModel.Quality)
	assert.Equal(t, "Nameless", config.PromptTemplates.FallbackTitle)
	assert.Equal(t, cloud.TopicSubscription{Name: "uploads-sub", TimeoutInSeconds: 30}, config.TopicSubscriptions["uploads"])
}

func TestLoadAppConfigWithoutFiles(t *testing.T) {
	testutil.SetupOS(t, t.TempDir())
	t.Setenv(cloud.EnvOpenAIAPIKey, "sk-env")
	t.Setenv(cloud.EnvAWSRegion, "us-west-2")

	config, err := cloud.LoadAppConfig()
	testutil.HandleErr(err, t)
	assert.Equal(t, "us-west-2", config.Application.Region)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadAppConfigRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.SetupOS(t, dir)
	testutil.WriteConfigFile(t, dir, ".env.toml", "[storage\nprovider=")

	_, err := cloud.LoadAppConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testutil.GetConfig().Validate())

	config := cloud.NewConfig()
	config.Storage.Provider = "ftp"
	config.ImageModel.Provider = "imagen"
	config.PromptTemplates.CoverPrompt = "{{.Title"
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage.provider "ftp"`)
	assert.Contains(t, err.Error(), "google_project_id is required for the imagen provider")
	assert.Contains(t, err.Error(), "prompt_templates.cover")

	config = cloud.NewConfig()
	assert.ErrorContains(t, config.Validate(), "OPENAI_API_KEY")

	config = testutil.GetConfig()
	config.PromptTemplates.CoverPrompt = "{{.Genre}}"
	assert.ErrorContains(t, config.Validate(), "prompt_templates.cover")
}

func TestOpenAIImageGenerator(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/images/generations":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = io.WriteString(w, `{"created":1,"data":[{"url":"https://img.example.com/a.png","revised_prompt":"x"}]}`)
		case "/v1/models":
			_, _ = io.WriteString(w, `{"data":[{"id":"dall-e-2"},{"id":"dall-e-3"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	generator := cloud.NewOpenAIImageGenerator(server.Client(), server.URL+"/v1/", "sk-test")
	url, err := generator.GenerateImage(context.Background(), model.ImageRequest{
		Model: "dall-e-3", Prompt: "a cover", Size: "1024x1024", Quality: "standard", Count: 1,
	})
	testutil.HandleErr(err, t)
	assert.Equal(t, "https://img.example.com/a.png", url)
	assert.Equal(t, "dall-e-3", got["model"])
	assert.Equal(t, "a cover", got["prompt"])
	assert.Equal(t, float64(1), got["n"])
	assert.Equal(t, "1024x1024", got["size"])
	assert.Equal(t, "standard", got["quality"])
	assert.Equal(t, "url", got["response_format"])

	models, err := generator.ListModels(context.Background())
	testutil.HandleErr(err, t)
	assert.Equal(t, []string{"dall-e-2", "dall-e-3"}, models)
}

func TestOpenAIImageGeneratorErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"url":""}]}`)
	}))
	defer server.Close()

	_, err := cloud.NewOpenAIImageGenerator(server.Client(), server.URL, "bad").
		GenerateImage(context.Background(), model.ImageRequest{Model: "dall-e-3", Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")

	_, err = cloud.NewOpenAIImageGenerator(server.Client(), server.URL, "good").
		GenerateImage(context.Background(), model.ImageRequest{Model: "dall-e-3", Prompt: "p"})
	assert.ErrorIs(t, err, cloud.ErrNoImageURL)
}

func TestHTTPImageFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cover.png" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(testutil.PNGBytes)
	}))
	defer server.Close()

	fetcher := cloud.NewHTTPImageFetcher(cloud.NewInstrumentedHTTPClient(5 * time.Second))

	data, err := fetcher.Fetch(context.Background(), server.URL+"/cover.png")
	testutil.HandleErr(err, t)
	assert.Equal(t, testutil.PNGBytes, data)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/expired.png")
	assert.ErrorContains(t, err, "410")

	data, err = fetcher.Fetch(context.Background(), cloud.DataURL("image/png", testutil.PNGBytes))
	testutil.HandleErr(err, t)
	assert.Equal(t, testutil.PNGBytes, data)

	_, err = fetcher.Fetch(context.Background(), "data:image/png,rawbytes")
	assert.Error(t, err)
}

// fakeS3 serves a single page of objects and records writes.
type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	listIn  *s3.ListObjectsV2Input
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listIn = in
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for key, data := range f.objects {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(data)))})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return &s3.ListBucketsOutput{Buckets: []types.Bucket{{Name: aws.String("promoter-2")}}}, nil
}

func TestS3ObjectStore(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{"p/info.json": []byte(`{}`)}}
	store := cloud.NewS3ObjectStore(api)
	ctx := context.Background()

	objects, err := store.List(ctx, "promoter-2", "p/")
	testutil.HandleErr(err, t)
	assert.Equal(t, []cloud.ObjectInfo{{Key: "p/info.json", Size: 2}}, objects)
	assert.Equal(t, "/", aws.ToString(api.listIn.Delimiter))
	assert.Equal(t, "p/", aws.ToString(api.listIn.Prefix))

	data, err := store.Get(ctx, "promoter-2", "p/info.json")
	testutil.HandleErr(err, t)
	assert.Equal(t, []byte(`{}`), data)

	_, err = store.Get(ctx, "promoter-2", "p/missing.json")
	assert.True(t, errors.Is(err, cloud.ErrObjectNotFound))

	testutil.HandleErr(store.Put(ctx, "promoter-2", "p/cover.png", testutil.PNGBytes, "image/png"), t)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "p/cover.png", aws.ToString(api.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(api.puts[0].ContentType))
	assert.Equal(t, int64(len(testutil.PNGBytes)), aws.ToInt64(api.puts[0].ContentLength))

	buckets, err := store.ListBuckets(ctx)
	testutil.HandleErr(err, t)
	assert.Equal(t, []string{"promoter-2"}, buckets)
}

func TestGCSObjectStorePut(t *testing.T) {
	var uploads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/promoter-2/o") {
			http.NotFound(w, r)
			return
		}
		uploads.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"bucket":"promoter-2","name":"p/cover.png","size":"3","contentType":"image/png"}`)
	}))
	defer server.Close()
	t.Setenv("STORAGE_EMULATOR_HOST", server.URL)

	client, err := storage.NewClient(context.Background())
	testutil.HandleErr(err, t)
	defer client.Close()
	store := cloud.NewGCSObjectStore(client, "test-project")

	testutil.HandleErr(store.Put(context.Background(), "promoter-2", "p/cover.png", []byte("png"), "image/png"), t)
	assert.Equal(t, int32(1), uploads.Load())

	// A rejected write leaves nothing behind in the bucket.
	err = store.Put(context.Background(), "promoter-2", "p/\xffcover.png", []byte("png"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
	assert.Equal(t, int32(1), uploads.Load())
}
