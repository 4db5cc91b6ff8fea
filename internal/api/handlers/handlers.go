// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"github.com/fluffyriot/birdseye/internal/config"
	"github.com/fluffyriot/birdseye/internal/worker"
)

type Handler struct {
	Config *config.AppConfig
	Worker *worker.Worker
}

func NewHandler(cfg *config.AppConfig, w *worker.Worker) *Handler {
	return &Handler{
		Config: cfg,
		Worker: w,
	}
}
