package client

import (
	"context"
	"fmt"
	"time"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

// APIError описывает ответ сервера с кодом не 2xx.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quiz api error %d: %s", e.StatusCode, e.Message)
}

// QuizMessage приходит в ответ на добавление или удаление вопроса в квизе.
type QuizMessage struct {
	Message string      `json:"message"`
	Quiz    models.Quiz `json:"quiz"`
}

// AddManyResult приходит в ответ на добавление нескольких существующих вопросов.
type AddManyResult struct {
	Message    string      `json:"message"`
	AddedCount int         `json:"addedCount"`
	Quiz       models.Quiz `json:"quiz"`
}

// Client определяет интерфейс клиента API квизов.
type Client interface {
	// Health проверяет доступность сервера и хранилища.
	Health(ctx context.Context) error

	ListQuizzes(ctx context.Context) ([]models.PopulatedQuiz, error)
	GetQuiz(ctx context.Context, quizID string) (*models.PopulatedQuiz, error)

	// GetQuizWithKeyword возвращает квиз с вопросами по keyword.
	// Пустой keyword означает ключевое слово сервера по умолчанию.
	GetQuizWithKeyword(ctx context.Context, quizID, keyword string) (*models.PopulatedQuiz, error)

	CreateQuiz(ctx context.Context, in models.QuizInput) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, quizID string, in models.QuizInput) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error

	AddQuestionToQuiz(ctx context.Context, quizID, questionID string) (*QuizMessage, error)
	AddManyQuestionsToQuiz(ctx context.Context, quizID string, questionIDs []string) (*AddManyResult, error)
	RemoveQuestionFromQuiz(ctx context.Context, quizID, questionID string) (*QuizMessage, error)

	ListQuestions(ctx context.Context) ([]models.Question, error)
	GetQuestion(ctx context.Context, questionID string) (*models.Question, error)
	CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID string, in models.QuestionInput) (*models.Question, error)
	DeleteQuestion(ctx context.Context, questionID string) error
}

// Таймауты
const (
	timeoutRequest = 5 * time.Second
)
