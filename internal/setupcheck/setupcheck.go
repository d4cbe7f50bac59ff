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

// Package setupcheck verifies that a deployment can reach its object store
// and image model before any upload is processed. The checks are
// informational: they report what works and what does not, and never fail
// the process.
package setupcheck

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/massey-audio/upload-processor/internal/cloud"
)

// Status is the outcome of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// Symbol is the marker printed in front of a check.
func (s Status) Symbol() string {
	switch s {
	case StatusOK:
		return "✅"
	case StatusWarn:
		return "⚠️ "
	default:
		return "❌"
	}
}

// Check is one line item of the report.
type Check struct {
	Name    string
	Status  Status
	Message string
	Details []string
}

// Report is the ordered result of Run.
type Report struct {
	Checks []Check
}

// Ready reports whether no check failed.
func (r Report) Ready() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Options selects what Run looks for.
type Options struct {
	Bucket      string                          // Bucket the uploads land in.
	ModelFamily string                          // Substring matched against model IDs, e.g. "dall-e".
	RequiredEnv []string                        // Environment variables that must be set.
	LookupEnv   func(key string) (string, bool) // os.LookupEnv outside of tests.
}

// CheckBuckets lists the visible buckets and looks for bucket.
func CheckBuckets(ctx context.Context, lister cloud.BucketLister, bucket string) Check {
	check := Check{Name: "object store credentials"}
	if lister == nil {
		check.Status = StatusFail
		check.Message = "object store cannot list buckets"
		return check
	}

	buckets, err := lister.ListBuckets(ctx)
	if err != nil {
		check.Status = StatusFail
		check.Message = "credentials invalid or insufficient permissions"
		check.Details = []string{err.Error()}
		return check
	}
	for _, name := range buckets {
		if name == bucket {
			check.Status = StatusOK
			check.Message = fmt.Sprintf("credentials valid, %s bucket found", bucket)
			return check
		}
	}
	check.Status = StatusWarn
	check.Message = fmt.Sprintf("credentials valid, but %s bucket not found", bucket)
	check.Details = []string{"available buckets: " + strings.Join(buckets, ", ")}
	return check
}

// CheckModels lists the models and looks for any whose ID contains family.
func CheckModels(ctx context.Context, lister cloud.ModelLister, family string) Check {
	check := Check{Name: "image model"}
	if lister == nil {
		check.Status = StatusFail
		check.Message = "image generator cannot list models"
		return check
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		check.Status = StatusFail
		check.Message = "API key invalid or missing"
		check.Details = []string{err.Error()}
		return check
	}

	var matching []string
	for _, id := range models {
		if strings.Contains(id, family) {
			matching = append(matching, id)
		}
	}
	if len(matching) == 0 {
		check.Status = StatusWarn
		check.Message = fmt.Sprintf("API key valid, but no %s models found", family)
		return check
	}
	check.Status = StatusOK
	check.Message = fmt.Sprintf("API key valid, %s models available", family)
	check.Details = []string{"available models: " + strings.Join(matching, ", ")}
	return check
}

// CheckEnvironment reports one check per required variable.
func CheckEnvironment(names []string, lookup func(string) (string, bool)) []Check {
	out := make([]Check, 0, len(names))
	for _, name := range names {
		check := Check{Name: "environment"}
		if v, ok := lookup(name); ok && v != "" {
			check.Status = StatusOK
			check.Message = name + " is set"
		} else {
			check.Status = StatusFail
			check.Message = name + " is missing"
		}
		out = append(out, check)
	}
	return out
}

// Run executes every check in order. Either lister may be nil when the
// corresponding client could not be built.
func Run(ctx context.Context, buckets cloud.BucketLister, models cloud.ModelLister, opts Options) Report {
	var report Report
	report.Checks = append(report.Checks, CheckBuckets(ctx, buckets, opts.Bucket))
	report.Checks = append(report.Checks, CheckModels(ctx, models, opts.ModelFamily))
	report.Checks = append(report.Checks, CheckEnvironment(opts.RequiredEnv, opts.LookupEnv)...)
	return report
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	bold      = color.New(color.Bold)
)

func statusColor(s Status) *color.Color {
	switch s {
	case StatusOK:
		return okColor
	case StatusWarn:
		return warnColor
	default:
		return failColor
	}
}

// Write prints the report followed by the deployment checklist.
func (r Report) Write(w io.Writer, bucket string) {
	_, _ = bold.Fprintln(w, "🧪 Testing upload processor setup...")

	for i, c := range r.Checks {
		_, _ = fmt.Fprintf(w, "\n%d. Checking %s...\n", i+1, c.Name)
		_, _ = statusColor(c.Status).Fprintf(w, "   %s %s\n", c.Status.Symbol(), c.Message)
		for _, d := range c.Details {
			_, _ = fmt.Fprintf(w, "   %s\n", d)
		}
	}

	_, _ = bold.Fprintln(w, "\n📋 Setup summary:")
	_, _ = fmt.Fprintln(w, "   - Ensure object store credentials are configured (environment, shared config or the [storage] section)")
	_, _ = fmt.Fprintln(w, "   - Ensure the image model credentials are set (OPENAI_API_KEY for the openai provider)")
	_, _ = fmt.Fprintln(w, "   - Deploy cmd/lambda or run cmd/server")
	_, _ = fmt.Fprintf(w, "   - Upload an audio file to the %s bucket to test\n", bucket)

	if r.Ready() {
		_, _ = okColor.Fprintln(w, "\n🎉 Setup looks good! Ready to deploy.")
	} else {
		_, _ = warnColor.Fprintln(w, "\n⚠️  Please fix the issues above before deploying.")
	}
}
