// Package http provides the HTTP handler for the login endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/models"
)

// Response messages that originate in the transport layer.
const (
	msgInvalidRequest  = "Invalid request"
	msgRequestTooLarge = "Request too large"
	msgInternalError   = "Internal server error"
)

// MaxRequestBytes caps the size of a login request body.
const MaxRequestBytes = 1 << 20

// AuthService defines the login operation required by the HTTP handler.
type AuthService interface {
	// Login checks creds and returns the response body. A non-nil error
	// means the check could not be performed.
	Login(ctx context.Context, creds models.LoginCredentials, remoteAddr string) (models.LoginResponse, error)
}

// AuthHandler handles login requests.
type AuthHandler struct {
	// AuthService performs the underlying credential checks.
	AuthService AuthService
	// Logger reports internal failures. Nil disables logging.
	Logger *zap.Logger
}

// ValidateLogin decodes {"loginInput","password"} and answers with the
// {"success","message","user"} envelope. Rejected credentials are still
// HTTP 200; only malformed bodies and internal failures change the status.
func (h *AuthHandler) ValidateLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge, msgRequestTooLarge)
			return
		}
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	resp, err := h.AuthService.Login(r.Context(), models.LoginCredentials{
		Identifier: req.LoginInput,
		Secret:     req.Password,
	}, r.RemoteAddr)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("login check failed", zap.Error(err))
		}
		writeFailure(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.LoginResponse{Success: false, Message: &msg})
}

func writeJSON(w http.ResponseWriter, status int, body models.LoginResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
