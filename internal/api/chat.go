package api

import (
	"net/http"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/chat"
)

type chatRequest struct {
	Transcript chat.Transcript `json:"transcript"`
	Message    string          `json:"message"`
}

type chatResponse struct {
	Transcript chat.Transcript `json:"transcript"`
}

func (s *Server) handleChatWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chatResponse{Transcript: chat.NewTranscript()})
}

// handleChat always answers 200; backend trouble shows up as a fallback
// turn in the transcript.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, t := range req.Transcript {
		if t.Role != chat.RoleUser && t.Role != chat.RoleModel {
			writeError(w, http.StatusBadRequest, "transcript roles must be user or model")
			return
		}
	}
	if len(req.Transcript) == 0 {
		req.Transcript = chat.NewTranscript()
	}
	writeJSON(w, http.StatusOK, chatResponse{Transcript: s.Assistant.Send(r.Context(), req.Transcript, req.Message)})
}
