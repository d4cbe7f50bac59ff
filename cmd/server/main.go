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

// Package main is the entry point for the long-running upload processor.
//
// The server hosts every trigger that is not AWS Lambda: an HTTP webhook that
// accepts S3-format event documents (as posted by MinIO webhook targets or a
// manual replay), the Pub/Sub listeners for Cloud Storage notifications, and
// the MinIO bucket notification listener. All of them feed the same cover art
// workflow.
//
// Functions:
//   - main: Sets up logging, telemetry, configuration and clients, starts
//     the listeners and the HTTP server, and handles graceful shutdown.
//   - NewRouter: Builds the gin engine with its middleware and routes.
//   - NotificationRouter: Registers the webhook route.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/massey-audio/upload-processor/internal/cloud"
	"github.com/massey-audio/upload-processor/internal/core/model"
	"github.com/massey-audio/upload-processor/internal/telemetry"
)

// maxEventBytes bounds the webhook request body.
const maxEventBytes = 1 << 20

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := GetConfig()
	if err != nil {
		log.Fatal(err)
	}

	closeLogs, err := telemetry.SetupLogging(config.Telemetry)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = closeLogs() }()
	slog.Info("Logging initialized")

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	if err := InitState(ctx); err != nil {
		slog.Error("Failed to initialize state", "error", err)
		log.Fatal(err)
	}
	defer state.cloud.Close()
	slog.Info("Initialized State")

	SetupListeners(ctx, state.cloud, state.workflow)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Server.Port),
		Handler:      NewRouter(config.Application.Name, state.workflow),
		ReadTimeout:  20 * time.Second,
		WriteTimeout: time.Duration(config.ImageModel.TimeoutInSeconds+60) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
		}
	}()
	slog.Info("Server ready", "port", config.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// Stops the listeners; in-flight notifications see a canceled context.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed", "error", err)
	}

	slog.Info("Server exiting")
}

// NewRouter builds the HTTP handler: otelgin tracing, permissive CORS, a
// health check and the versioned API.
func NewRouter(serviceName string, processor cloud.NotificationProcessor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		NotificationRouter(apiV1, processor)
	}
	return r
}

// NotificationRouter registers POST /notifications.
//
// The body is an S3-format event document. Every record is processed and the
// response always carries one result per attempted notification, with status
// 200 even when some of them failed. Only an unreadable body is rejected.
//
// Inputs:
//   - r: The router group the route is added to.
//   - processor: The workflow that handles the notifications.
func NotificationRouter(r *gin.RouterGroup, processor cloud.NotificationProcessor) {
	r.POST("/notifications", func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		event, err := cloud.ParseS3Event(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		requestID := uuid.NewString()
		notifications := cloud.S3EventNotifications(event)
		slog.InfoContext(c.Request.Context(), "received notifications",
			"request_id", requestID, "records", len(event.Records), "notifications", len(notifications))

		results := processor.ProcessBatch(c.Request.Context(), notifications)
		if results == nil {
			results = []model.Result{}
		}
		c.JSON(http.StatusOK, gin.H{
			"request_id": requestID,
			"summary":    model.Summarize(results),
			"results":    results,
		})
	})
}
