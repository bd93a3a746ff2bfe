package main

import (
	"context"
	"net/http"
	"time"
)

// healthCheckHandler godoc
//
//	@Summary		Healthcheck
//	@Description	Reports service status and dependency reachability
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	error
//	@Security		BasicAuth
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
		"db":      "ok",
		"cache":   "disabled",
	}

	status := http.StatusOK
	if err := app.store.Ping(ctx); err != nil {
		app.logger.Errorw("health: database unreachable", "error", err.Error())
		data["status"], data["db"] = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}
	if app.cache.Enabled() {
		data["cache"] = "ok"
		if err := app.cache.Ping(ctx); err != nil {
			app.logger.Warnw("health: cache unreachable", "error", err.Error())
			data["cache"] = "unreachable"
		}
	}

	if err := app.jsonResponse(w, status, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
