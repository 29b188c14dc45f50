package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// GetStorefront retrieves the tenant and session IDs placed in the request context
// by StorefrontMiddleware. Returns false after writing a 401 if either is missing.
func GetStorefront(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (tenantID, sessionID string, ok bool) {
	tenantID, ok = GetTenantID(r.Context())
	if !ok || tenantID == "" {
		RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: Missing tenant ID")
		return "", "", false
	}
	sessionID, ok = GetSessionID(r.Context())
	if !ok || sessionID == "" {
		RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: Missing session ID")
		return "", "", false
	}
	return tenantID, sessionID, true
}
