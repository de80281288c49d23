package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/shell"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Mode     string `json:"mode"`
}

func (a authRequest) creds() identity.Credentials {
	return identity.Credentials{Email: strings.TrimSpace(a.Email), Password: a.Password}
}

type signInResponse struct {
	Session *identity.Session `json:"session"`
	View    shell.View        `json:"view"`
}

type sessionResponse struct {
	View shell.View     `json:"view"`
	User *identity.User `json:"user,omitempty"`
}

func (s *Server) parseAuth(w http.ResponseWriter, r *http.Request) (authRequest, shell.Mode, bool) {
	var req authRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, "", false
	}
	mode, err := shell.ParseMode(req.Mode)
	if err != nil {
		status, msg := authFailure(err)
		writeError(w, status, msg)
		return req, "", false
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return req, "", false
	}
	return req, mode, true
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	req, mode, ok := s.parseAuth(w, r)
	if !ok {
		return
	}

	sess, err := s.Shell.SignIn(r.Context(), mode, req.creds())
	if err != nil {
		status, msg := authFailure(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{Session: sess, View: s.Shell.Resolve(r.Context(), sess)})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	req, mode, ok := s.parseAuth(w, r)
	if !ok {
		return
	}

	msg, err := s.Shell.SignUp(r.Context(), mode, req.creds())
	if err != nil {
		status, text := authFailure(err)
		writeError(w, status, text)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	// The client drops its token either way, so a provider failure is
	// only logged.
	if err := s.Shell.SignOut(r.Context(), sessionFrom(r.Context())); err != nil {
		zap.L().Warn("api: sign out", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	resp := sessionResponse{View: s.Shell.Resolve(r.Context(), sess)}
	if sess != nil {
		resp.User = &sess.User
	}
	writeJSON(w, http.StatusOK, resp)
}
