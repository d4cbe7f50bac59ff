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

// Package cor (Chain of Responsibility) holds the small framework the upload
// processor is assembled from. A notification is handled by a Chain of Commands
// that share a single Context: each command reads what it needs from the
// Context, does one unit of work, and writes its result back.
//
// A command ends the handling of a notification in one of two ways:
//   - AddError records a hard failure. The chain stops unless it was built
//     with ContinueOnFailure(true).
//   - Skip records that there is nothing to do (wrong key shape, not audio,
//     cover already present). The chain always stops and no error is recorded.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the key of a command's primary input. BaseChain moves the
	// previous command's CtxOut value here before running the next command.
	CtxIn = "__IN__"
	// CtxOut is the key a command writes its primary output to.
	CtxOut = "__OUT__"
)

// Context is the state shared by the commands of one chain execution.
type Context interface {
	// SetContext sets the Go context used for cancellation and tracing.
	SetContext(context context.Context)

	// GetContext returns the Go context of the currently executing command.
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records a hard failure, keyed by the name of the failing command.
	AddError(key string, err error)

	// GetErrors returns every recorded failure.
	GetErrors() map[string]error

	// HasErrors reports whether any failure was recorded.
	HasErrors() bool

	// Skip marks the execution as finished with nothing to do. The first
	// reason wins; later calls are ignored.
	Skip(reason string)

	// IsSkipped reports whether Skip was called.
	IsSkipped() bool

	// GetSkipReason returns the reason given to the first Skip call.
	GetSkipReason() string
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a named, instrumented unit of work inside a Chain.
type Command interface {
	Executable

	// GetName returns the command name used in logs, spans and metric names.
	GetName() string

	// GetInputParam returns the Context key the command reads its input from.
	GetInputParam() string

	// GetOutputParam returns the Context key the command writes its output to.
	GetOutputParam() string

	// IsExecutable reports whether the Context holds what Execute needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
	GetSkipCounter() metric.Int64Counter
}

// Chain is a Command that runs an ordered list of Commands.
type Chain interface {
	Command

	// ContinueOnFailure controls whether commands after a failure still run.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
