package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/quiz"
	"github.com/letsssgooo/quizAdmin/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st := storage.NewMemoryStorage()
	log := discardLogger()
	srv := New(quiz.NewService(st, log), st, log, Options{APIPrefix: "/api", DefaultKeyword: "capital"})

	return &testAPI{t: t, handler: srv.Handler()}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[messageResponse](t, rec).Message
}

func (a *testAPI) createQuestion(text string, keywords ...string) models.Question {
	a.t.Helper()

	body, err := json.Marshal(map[string]any{
		"text":               text,
		"options":            []string{"a", "b", "c"},
		"correctAnswerIndex": 1,
		"keywords":           keywords,
	})
	require.NoError(a.t, err)

	rec := a.do(http.MethodPost, "/question/create", string(body))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Question](a.t, rec)
}

func (a *testAPI) createQuiz(title string) models.Quiz {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/quizzes/create", `{"title":"`+title+`"}`)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Quiz](a.t, rec)
}

func TestIndexAndHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SimpleQuiz API is running", rec.Body.String())

	rec = api.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_Unavailable(t *testing.T) {
	st := storage.NewMemoryStorage()
	srv := New(quiz.NewService(st, discardLogger()), failingPinger{}, discardLogger(), Options{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQuestionRoutes(t *testing.T) {
	api := newTestAPI(t)

	q := api.createQuestion("Capital of France?", "capital")
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, []string{"capital"}, q.Keywords)

	rec := api.do(http.MethodGet, "/question/getAllQuestion", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Question](t, rec), 1)

	rec = api.do(http.MethodGet, "/question/"+q.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, q.ID, decode[models.Question](t, rec).ID)

	rec = api.do(http.MethodPut, "/question/"+q.ID, `{"text":"Capital of Spain?","options":["Madrid","Paris"],"correctAnswerIndex":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Question](t, rec)
	assert.Equal(t, "Capital of Spain?", updated.Text)
	assert.Equal(t, q.ID, updated.ID)
	assert.Equal(t, []string{}, updated.Keywords)

	rec = api.do(http.MethodDelete, "/question/"+q.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Question deleted successfully", messageOf(t, rec))

	rec = api.do(http.MethodGet, "/question/"+q.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Question not found", messageOf(t, rec))
}

func TestCreateQuestion_Validation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "one option", body: `{"text":"Q","options":["a"],"correctAnswerIndex":0}`, status: http.StatusBadRequest},
		{name: "index out of range", body: `{"text":"Q","options":["a","b"],"correctAnswerIndex":2}`, status: http.StatusBadRequest},
		{name: "blank text", body: `{"text":"  ","options":["a","b"],"correctAnswerIndex":0}`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"text":`, status: http.StatusBadRequest},
		{name: "empty body", body: "", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/question/create", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, messageOf(t, rec))
		})
	}

	rec := api.do(http.MethodGet, "/question/getAllQuestion", "")
	assert.Empty(t, decode[[]models.Question](t, rec))
}

func TestQuizRoutes(t *testing.T) {
	api := newTestAPI(t)

	q1 := api.createQuestion("Q1", "capital")
	created := api.createQuiz("Geography")
	assert.Equal(t, []string{}, created.Questions)

	rec := api.do(http.MethodPut, "/quizzes/update/"+created.ID, `{"title":"World geography","description":"Countries","questions":["`+q1.ID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Quiz](t, rec)
	assert.Equal(t, "World geography", updated.Title)
	assert.Equal(t, "Countries", updated.Description)
	assert.Empty(t, updated.Questions, "questions are not changed by update")

	rec = api.do(http.MethodGet, "/quizzes/getAllQuiz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.PopulatedQuiz](t, rec), 1)

	rec = api.do(http.MethodGet, "/quizzes/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "World geography", decode[models.PopulatedQuiz](t, rec).Title)

	rec = api.do(http.MethodDelete, "/quizzes/delete/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Quiz deleted successfully", messageOf(t, rec))

	rec = api.do(http.MethodGet, "/quizzes/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quiz not found", messageOf(t, rec))

	rec = api.do(http.MethodGet, "/question/"+q1.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code, "questions survive quiz deletion")
}

func TestCreateQuiz_WithUnknownQuestion(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/quizzes/create", `{"title":"T","questions":["missing"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "One or more questions not found", messageOf(t, rec))

	rec = api.do(http.MethodPost, "/quizzes/create", `{"title":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddQuestion_ByReference(t *testing.T) {
	api := newTestAPI(t)

	qz := api.createQuiz("Geography")
	q := api.createQuestion("Q1")

	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":"`+q.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[quizMessageResponse](t, rec)
	assert.Equal(t, "Question added to quiz", resp.Message)
	assert.Equal(t, []string{q.ID}, resp.Quiz.Questions)

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":"`+q.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Question already in quiz", messageOf(t, rec))

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Question not found", messageOf(t, rec))

	rec = api.do(http.MethodPost, "/quizzes/missing/question", `{"questionId":"`+q.ID+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quiz not found", messageOf(t, rec))
}

func TestAddQuestion_ByValue(t *testing.T) {
	api := newTestAPI(t)
	qz := api.createQuiz("Geography")

	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"text":"New","options":["a","b"],"correctAnswerIndex":0}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Question](t, rec)
	assert.Equal(t, "New", created.Text)

	rec = api.do(http.MethodGet, "/quizzes/"+qz.ID, "")
	populated := decode[models.PopulatedQuiz](t, rec)
	require.Len(t, populated.Questions, 1)
	assert.Equal(t, created.ID, populated.Questions[0].ID)

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"text":"Bad","options":["a"],"correctAnswerIndex":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddQuestion_EmptyQuestionIDCreates(t *testing.T) {
	api := newTestAPI(t)
	qz := api.createQuiz("Geography")

	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":"","text":"Inline","options":["a","b"],"correctAnswerIndex":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Question](t, rec)
	assert.Equal(t, "Inline", created.Text)

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, messageOf(t, rec), "missing field")

	rec = api.do(http.MethodGet, "/quizzes/"+qz.ID, "")
	populated := decode[models.PopulatedQuiz](t, rec)
	require.Len(t, populated.Questions, 1)
	assert.Equal(t, created.ID, populated.Questions[0].ID)
}

func TestAddManyQuestions_ByReference(t *testing.T) {
	api := newTestAPI(t)

	qz := api.createQuiz("Geography")
	a := api.createQuestion("A")
	b := api.createQuestion("B")

	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":"`+a.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `{"questionIds":["`+a.ID+`","`+b.ID+`","`+a.ID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[addManyResponse](t, rec)
	assert.Equal(t, "Questions added to quiz", resp.Message)
	assert.Equal(t, 1, resp.AddedCount)
	assert.Equal(t, []string{a.ID, b.ID}, resp.Quiz.Questions)

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `{"questionIds":["`+b.ID+`","missing"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "One or more questions not found", messageOf(t, rec))

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `{"questionIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[addManyResponse](t, rec)
	assert.Zero(t, resp.AddedCount)
	assert.Equal(t, []string{a.ID, b.ID}, resp.Quiz.Questions)

	rec = api.do(http.MethodPost, "/quizzes/missing/questions", `{"questionIds":[]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quiz not found", messageOf(t, rec))

	rec = api.do(http.MethodPost, "/quizzes/missing/questions", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddManyQuestions_ByValue(t *testing.T) {
	api := newTestAPI(t)
	qz := api.createQuiz("Geography")

	bodies := []string{
		`[{"text":"A","options":["a","b"],"correctAnswerIndex":0},{"text":"B","options":["a","b"],"correctAnswerIndex":1}]`,
		`{"questions":[{"text":"C","options":["a","b"],"correctAnswerIndex":0}]}`,
	}
	for _, body := range bodies {
		rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := api.do(http.MethodGet, "/quizzes/"+qz.ID, "")
	populated := decode[models.PopulatedQuiz](t, rec)
	require.Len(t, populated.Questions, 3)
	assert.Equal(t, "A", populated.Questions[0].Text)
	assert.Equal(t, "C", populated.Questions[2].Text)

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `[{"text":"D","options":["a","b"],"correctAnswerIndex":0},{"text":"E","options":["a"],"correctAnswerIndex":0}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, messageOf(t, rec), "question 1")

	rec = api.do(http.MethodGet, "/question/getAllQuestion", "")
	assert.Len(t, decode[[]models.Question](t, rec), 3, "invalid batch writes nothing")

	rec = api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `[]`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(http.MethodPost, "/quizzes/missing/questions", `[]`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveQuestion(t *testing.T) {
	api := newTestAPI(t)

	qz := api.createQuiz("Geography")
	q := api.createQuestion("Q1")
	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/question", `{"questionId":"`+q.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodDelete, "/quizzes/"+qz.ID+"/question/"+q.ID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[quizMessageResponse](t, rec)
	assert.Equal(t, "Question removed from quiz successfully", resp.Message)
	assert.Empty(t, resp.Quiz.Questions)

	rec = api.do(http.MethodDelete, "/quizzes/"+qz.ID+"/question/"+q.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Question not found in this quiz", messageOf(t, rec))

	rec = api.do(http.MethodGet, "/question/"+q.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code, "question document is untouched")
}

func TestPopulate(t *testing.T) {
	api := newTestAPI(t)

	qz := api.createQuiz("Geography")
	capital := api.createQuestion("Capital?", "capital")
	river := api.createQuestion("River?", "river")
	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `{"questionIds":["`+capital.ID+`","`+river.ID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/quizzes/"+qz.ID+"/populate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	populated := decode[models.PopulatedQuiz](t, rec)
	require.Len(t, populated.Questions, 1)
	assert.Equal(t, capital.ID, populated.Questions[0].ID)

	rec = api.do(http.MethodGet, "/quizzes/"+qz.ID+"/populate?keyword=river", "")
	require.Equal(t, http.StatusOK, rec.Code)
	populated = decode[models.PopulatedQuiz](t, rec)
	require.Len(t, populated.Questions, 1)
	assert.Equal(t, river.ID, populated.Questions[0].ID)

	rec = api.do(http.MethodGet, "/quizzes/"+qz.ID+"/populate?keyword=ocean", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(mustField(t, rec, "questions")))

	rec = api.do(http.MethodGet, "/quizzes/missing/populate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, name string) json.RawMessage {
	t.Helper()

	fields := decode[map[string]json.RawMessage](t, rec)
	field, ok := fields[name]
	require.True(t, ok, "field %s is missing in %s", name, rec.Body.String())
	return field
}

func TestDeletedQuestionIsOmitted(t *testing.T) {
	api := newTestAPI(t)

	qz := api.createQuiz("Geography")
	a := api.createQuestion("A")
	b := api.createQuestion("B")
	rec := api.do(http.MethodPost, "/quizzes/"+qz.ID+"/questions", `{"questionIds":["`+a.ID+`","`+b.ID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodDelete, "/question/"+a.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/quizzes/"+qz.ID, "")
	populated := decode[models.PopulatedQuiz](t, rec)
	require.Len(t, populated.Questions, 1)
	assert.Equal(t, b.ID, populated.Questions[0].ID)
}

func TestAPIPrefix(t *testing.T) {
	api := newTestAPI(t)
	qz := api.createQuiz("Geography")

	rec := api.do(http.MethodGet, "/api/quizzes/"+qz.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, qz.ID, decode[models.PopulatedQuiz](t, rec).ID)

	rec = api.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, messageOf(t, rec), "not found")

	rec = api.do(http.MethodPatch, "/question/create", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.NotEmpty(t, messageOf(t, rec))
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/quizzes/create", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

type panickingService struct {
	quiz.QuizService
}

func (panickingService) ListQuestions(context.Context) ([]models.Question, error) {
	panic("boom")
}

func TestRecoverFromPanic(t *testing.T) {
	srv := New(panickingService{}, storage.NewMemoryStorage(), discardLogger(), Options{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/question/getAllQuestion", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal server error occurred", messageOf(t, rec))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&quiz.Error{Kind: quiz.ErrValidation, Message: "bad"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&quiz.Error{Kind: quiz.ErrAlreadyLinked, Message: "dup"}))
	assert.Equal(t, http.StatusNotFound, statusFor(&quiz.Error{Kind: quiz.ErrNotFound, Message: "missing"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("storage: broken")))
}
