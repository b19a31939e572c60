package storage

import (
	"context"
	"errors"
	"time"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

// Ошибки хранилища
var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyLinked = errors.New("question already linked to quiz")
	ErrNotLinked     = errors.New("question is not linked to quiz")
)

// Now возвращает время изменения связей квиза: UTC с точностью до миллисекунд,
// как у меток, которые ставит сервис.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Storage определяет интерфейс для хранения вопросов и квизов.
type Storage interface {
	// ListQuestions возвращает все вопросы в порядке создания.
	ListQuestions(ctx context.Context) ([]models.Question, error)

	// GetQuestion возвращает вопрос по ID. ErrNotFound, если вопроса нет.
	GetQuestion(ctx context.Context, id string) (*models.Question, error)

	// GetQuestionsByIDs возвращает существующие вопросы из ids.
	// Отсутствующие id пропускаются, порядок результата не гарантирован.
	GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error)

	// SaveQuestions сохраняет новые вопросы. Сохраняются либо все, либо ни один.
	SaveQuestions(ctx context.Context, questions []*models.Question) error

	// UpdateQuestion заменяет редактируемые поля вопроса. ErrNotFound, если вопроса нет.
	UpdateQuestion(ctx context.Context, q *models.Question) error

	// DeleteQuestion удаляет вопрос. Квизы, ссылающиеся на него, не меняются.
	DeleteQuestion(ctx context.Context, id string) error

	// ListQuizzes возвращает все квизы в порядке создания.
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)

	// GetQuiz возвращает квиз по ID. ErrNotFound, если квиза нет.
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)

	// SaveQuiz сохраняет новый квиз.
	SaveQuiz(ctx context.Context, q *models.Quiz) error

	// UpdateQuiz заменяет название и описание квиза. Список вопросов не меняется.
	UpdateQuiz(ctx context.Context, q *models.Quiz) (*models.Quiz, error)

	// DeleteQuiz удаляет квиз. ErrNotFound, если квиза нет.
	DeleteQuiz(ctx context.Context, id string) error

	// AppendQuestion атомарно добавляет questionID в конец списка квиза,
	// если его там ещё нет. ErrNotFound, если квиза нет, ErrAlreadyLinked,
	// если вопрос уже в квизе.
	AppendQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error)

	// AppendQuestions атомарно добавляет в конец списка квиза те ids,
	// которых в нём ещё нет, в порядке ids. Возвращает квиз и число добавленных.
	AppendQuestions(ctx context.Context, quizID string, ids []string) (*models.Quiz, int, error)

	// RemoveQuestion атомарно удаляет questionID из списка квиза.
	// ErrNotFound, если квиза нет, ErrNotLinked, если вопроса в квизе нет.
	RemoveQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error)

	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error

	// Close освобождает ресурсы хранилища.
	Close(ctx context.Context) error
}
