package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.service.ListQuestions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.service.GetQuestion(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var in models.QuestionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	q, err := s.service.CreateQuestion(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var in models.QuestionInput
	if !decodeJSON(w, r, &in) {
		return
	}

	q, err := s.service.UpdateQuestion(r.Context(), mux.Vars(r)["questionId"], in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteQuestion(r.Context(), mux.Vars(r)["questionId"]); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Question deleted successfully")
}
