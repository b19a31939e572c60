package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/quiz"
)

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.service.ListQuizzes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizzes)
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := s.service.GetQuiz(r.Context(), mux.Vars(r)["quizId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (s *Server) getQuizWithKeyword(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		keyword = s.defaultKeyword
	}

	q, err := s.service.GetQuizWithKeyword(r.Context(), mux.Vars(r)["quizId"], keyword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var in models.QuizInput
	if !decodeJSON(w, r, &in) {
		return
	}

	q, err := s.service.CreateQuiz(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var in models.QuizInput
	if !decodeJSON(w, r, &in) {
		return
	}

	q, err := s.service.UpdateQuiz(r.Context(), mux.Vars(r)["quizId"], in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteQuiz(r.Context(), mux.Vars(r)["quizId"]); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Quiz deleted successfully")
}

// addQuestionRequest описывает тело POST /quizzes/{quizId}/question:
// либо {"questionId": "..."}, либо поля нового вопроса.
// Пустой questionId означает создание нового вопроса.
type addQuestionRequest struct {
	QuestionID string `json:"questionId"`
	models.QuestionInput
}

type quizMessageResponse struct {
	Message string       `json:"message"`
	Quiz    *models.Quiz `json:"quiz"`
}

type addManyResponse struct {
	Message    string       `json:"message"`
	AddedCount int          `json:"addedCount"`
	Quiz       *models.Quiz `json:"quiz"`
}

func (s *Server) addQuestion(w http.ResponseWriter, r *http.Request) {
	var req addQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var src quiz.QuestionSource = quiz.ByValue{Fields: req.QuestionInput}
	if req.QuestionID != "" {
		src = quiz.ByReference{ID: req.QuestionID}
	}

	res, err := s.service.AddQuestion(r.Context(), mux.Vars(r)["quizId"], src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if res.Created {
		writeJSON(w, http.StatusCreated, res.Question)
		return
	}

	writeJSON(w, http.StatusOK, quizMessageResponse{Message: "Question added to quiz", Quiz: res.Quiz})
}

func (s *Server) addManyQuestions(w http.ResponseWriter, r *http.Request) {
	batch, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	res, err := s.service.AddManyQuestions(r.Context(), mux.Vars(r)["quizId"], batch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if res.Created {
		writeJSON(w, http.StatusCreated, res.Questions)
		return
	}

	writeJSON(w, http.StatusOK, addManyResponse{
		Message:    "Questions added to quiz",
		AddedCount: res.AddedCount,
		Quiz:       res.Quiz,
	})
}

// decodeBatch разбирает тело POST /quizzes/{quizId}/questions. Допустимы
// {"questionIds": [...]}, {"questions": [...]} и массив полей вопросов.
func decodeBatch(w http.ResponseWriter, r *http.Request) (quiz.QuestionBatch, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var fields []models.QuestionInput
		if err = json.Unmarshal(trimmed, &fields); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return nil, false
		}
		return quiz.ValueBatch{Fields: fields}, true
	}

	var req struct {
		QuestionIDs []string               `json:"questionIds"`
		Questions   []models.QuestionInput `json:"questions"`
	}
	if err = json.Unmarshal(body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}

	if req.QuestionIDs == nil && req.Questions != nil {
		return quiz.ValueBatch{Fields: req.Questions}, true
	}

	return quiz.ReferenceBatch{IDs: req.QuestionIDs}, true
}

func (s *Server) removeQuestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	q, err := s.service.RemoveQuestion(r.Context(), vars["quizId"], vars["questionId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizMessageResponse{Message: "Question removed from quiz successfully", Quiz: q})
}
