package main

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	rebuildTriggered     = "triggered"
	rebuildSkipped       = "skipped"
	rebuildNotConfigured = "not configured"
	rebuildFailed        = "failed"
)

var rebuildClient = &http.Client{Timeout: 10 * time.Second}

// triggerRebuild fires the static-site rebuild webhook without awaiting it.
// The returned status reflects only what is knowable before dispatch; the
// outcome of the request itself is logged inside the goroutine.
func (app *application) triggerRebuild() string {
	hookURL := app.config.RebuildHookURL
	if hookURL == "" {
		return rebuildNotConfigured
	}

	req, err := http.NewRequest(http.MethodPost, hookURL, nil)
	if err != nil {
		app.logger.Error("could not construct rebuild hook request", slog.String("error", err.Error()))
		return rebuildFailed
	}

	go func() {
		res, err := rebuildClient.Do(req)
		if err != nil {
			app.logger.Error("rebuild hook request failed", slog.String("error", err.Error()))
			return
		}
		defer res.Body.Close()

		app.logger.Info("rebuild hook dispatched", slog.Int("status", res.StatusCode))
	}()

	return rebuildTriggered
}
