package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/letsssgooo/quizAdmin/internal/quiz"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError отвечает клиенту по виду ошибки сервиса.
// Ошибки, не являющиеся quiz.Error, отдаются как 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	var svcErr *quiz.Error
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, quiz.ErrValidation), errors.Is(err, quiz.ErrAlreadyLinked):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON читает тело запроса в v. При ошибке сам отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
