package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/shell"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return eris.Wrap(err, "api: decode body")
	}
	return nil
}

// authFailure maps sign-in and sign-up errors to a status and a message
// the visitor can read.
func authFailure(err error) (int, string) {
	var pe *identity.ProviderError
	switch {
	case errors.Is(err, shell.ErrAccessDenied), errors.Is(err, shell.ErrRoleUnverified), errors.Is(err, shell.ErrOperatorSignUp):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, shell.ErrUnknownMode):
		return http.StatusBadRequest, "mode must be user or operator"
	case errors.As(err, &pe):
		if errors.Is(pe.Err, identity.ErrSignUpRejected) {
			return http.StatusBadRequest, pe.Message
		}
		return http.StatusUnauthorized, pe.Message
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid login credentials"
	default:
		zap.L().Error("api: identity provider failure", zap.Error(err))
		return http.StatusBadGateway, "identity provider unavailable"
	}
}
