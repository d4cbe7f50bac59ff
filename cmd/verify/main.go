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

// Package main is a manual setup check for operators. It confirms that the
// configured credentials can see the upload bucket and the image model, and
// that the required environment variables are set. The report is
// informational; the exit code is non-zero only on usage errors.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/setupcheck"
)

type options struct {
	bucket       string
	configPrefix string
	runtime      string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check object store, image model and environment setup",
		Long: `Runs the same client setup as the processor and reports, for each
dependency, whether it is usable:

  1. object store credentials and the upload bucket
  2. the image model (models of the configured family, e.g. dall-e)
  3. required environment variables`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "upload bucket to look for (defaults to storage.bucket)")
	cmd.Flags().StringVar(&opts.configPrefix, "config-prefix", "configs", "directory holding the .env*.toml files")
	cmd.Flags().StringVar(&opts.runtime, "runtime", "local", "runtime whose .env.<runtime>.toml overrides the base file")

	cmd.AddCommand(newExampleCommand())
	return cmd
}

func newExampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "example-track-info",
		Short: "Print a complete info.json sidecar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(model.GetExampleTrackInfo(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if err := os.Setenv(cloud.EnvConfigFilePrefix, opts.configPrefix); err != nil {
		return err
	}
	if err := os.Setenv(cloud.EnvConfigRuntime, opts.runtime); err != nil {
		return err
	}

	// Not validated: missing settings are reported by the checks instead.
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return err
	}
	cloud.ApplyEnvironmentOverrides(config)

	bucket := opts.bucket
	if bucket == "" {
		bucket = config.Storage.Bucket
	}

	var buckets cloud.BucketLister
	var models cloud.ModelLister
	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "❌ failed to create clients: %v\n", err)
	} else {
		defer clients.Close()
		buckets, _ = clients.ObjectStore.(cloud.BucketLister)
		models, _ = clients.ImageGenerator.(cloud.ModelLister)
	}

	var required []string
	if config.ImageModel.Provider == cloud.ImageProviderOpenAI {
		required = append(required, cloud.EnvOpenAIAPIKey)
	}

	report := setupcheck.Run(ctx, buckets, models, setupcheck.Options{
		Bucket:      bucket,
		ModelFamily: config.ImageModel.ModelFamily,
		RequiredEnv: required,
		LookupEnv:   os.LookupEnv,
	})
	report.Write(out, bucket)
	return nil
}
