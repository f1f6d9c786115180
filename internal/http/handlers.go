package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"discord-ecs-control/internal/gateway"
)

// maxInteractionBody bounds a single interaction payload.
const maxInteractionBody = 1 << 20

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// interactionsHandler passes the raw body through untouched: the signature
// covers the exact bytes.
func (a *App) interactionsHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInteractionBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "body too large"})
			return
		}
		if a.Logger != nil {
			a.Logger.Error("read interaction body", "error", err)
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	resp := a.Gateway.Handle(r.Context(), gateway.Request{Headers: r.Header, Body: body})
	writeJSON(w, resp.StatusCode, resp.Body)
}
