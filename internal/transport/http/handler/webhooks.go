package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Webhook receives social share payloads. Every request is acknowledged,
// including malformed ones.
func Webhook(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")
	var payload map[string]json.RawMessage
	if err := decodeJSON(w, r, &payload); err != nil {
		zap.L().Warn("webhook payload not decoded", zap.String("platform", platform), zap.Error(err))
	} else {
		zap.L().Info("webhook received",
			zap.String("platform", platform),
			zap.ByteString("id", payload["id"]),
			zap.ByteString("title", payload["title"]),
		)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
