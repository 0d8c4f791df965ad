package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if a.Prompts == nil {
		status = "degraded"
	}
	a.json(w, http.StatusOK, map[string]string{"status": status})
}
