package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/letsssgooo/quizAdmin/internal/quiz"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options содержит настройки маршрутизации.
type Options struct {
	// APIPrefix задаёт дополнительный префикс, под которым доступны все маршруты.
	APIPrefix string
	// DefaultKeyword используется для /populate без параметра keyword.
	DefaultKeyword string
}

// Server обслуживает HTTP API квизов и вопросов.
type Server struct {
	service        quiz.QuizService
	health         Pinger
	log            *slog.Logger
	apiPrefix      string
	defaultKeyword string
}

// New создаёт Server.
func New(service quiz.QuizService, health Pinger, log *slog.Logger, opts Options) *Server {
	return &Server{
		service:        service,
		health:         health,
		log:            log,
		apiPrefix:      opts.APIPrefix,
		defaultKeyword: opts.DefaultKeyword,
	}
}

var corsHandler = handlers.CORS(
	handlers.AllowedOrigins([]string{"*"}),
	handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
	handlers.AllowedHeaders([]string{"Origin", "X-Requested-With", "Content-Type", "Accept"}),
)

// Handler возвращает корневой http.Handler со всеми middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	router.HandleFunc("/", s.index).Methods(http.MethodGet)

	if s.apiPrefix != "" && s.apiPrefix != "/" {
		s.registerRoutes(router.PathPrefix(s.apiPrefix).Subrouter())
	}
	s.registerRoutes(router)

	return corsHandler(use(router, s.recoverAndLog, s.logRequests))
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	// Статические пути регистрируются раньше путей с {quizId}.
	r.HandleFunc("/quizzes/getAllQuiz", s.listQuizzes).Methods(http.MethodGet)
	r.HandleFunc("/quizzes/create", s.createQuiz).Methods(http.MethodPost)
	r.HandleFunc("/quizzes/update/{quizId}", s.updateQuiz).Methods(http.MethodPut)
	r.HandleFunc("/quizzes/delete/{quizId}", s.deleteQuiz).Methods(http.MethodDelete)
	r.HandleFunc("/quizzes/{quizId}", s.getQuiz).Methods(http.MethodGet)
	r.HandleFunc("/quizzes/{quizId}/populate", s.getQuizWithKeyword).Methods(http.MethodGet)
	r.HandleFunc("/quizzes/{quizId}/question", s.addQuestion).Methods(http.MethodPost)
	r.HandleFunc("/quizzes/{quizId}/questions", s.addManyQuestions).Methods(http.MethodPost)
	r.HandleFunc("/quizzes/{quizId}/question/{questionId}", s.removeQuestion).Methods(http.MethodDelete)

	r.HandleFunc("/question/getAllQuestion", s.listQuestions).Methods(http.MethodGet)
	r.HandleFunc("/question/create", s.createQuestion).Methods(http.MethodPost)
	r.HandleFunc("/question/{questionId}", s.getQuestion).Methods(http.MethodGet)
	r.HandleFunc("/question/{questionId}", s.updateQuestion).Methods(http.MethodPut)
	r.HandleFunc("/question/{questionId}", s.deleteQuestion).Methods(http.MethodDelete)
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("SimpleQuiz API is running"))
}

// healthCheck проверяет работоспособность сервера и подключение к хранилищу
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		s.log.Error("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Route "+r.Method+" "+r.URL.Path+" not found")
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed for "+r.URL.Path)
}
