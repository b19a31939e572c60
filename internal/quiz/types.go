package quiz

import (
	"context"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

// QuestionSource указывает, какой вопрос добавить в квиз:
// существующий (ByReference) или новый (ByValue).
type QuestionSource interface {
	questionSource()
}

// ByReference ссылается на существующий вопрос.
type ByReference struct {
	ID string
}

// ByValue описывает новый вопрос, который нужно создать.
type ByValue struct {
	Fields models.QuestionInput
}

func (ByReference) questionSource() {}
func (ByValue) questionSource()     {}

// QuestionBatch указывает, какие вопросы добавить в квиз за один вызов.
type QuestionBatch interface {
	questionBatch()
}

// ReferenceBatch ссылается на существующие вопросы.
type ReferenceBatch struct {
	IDs []string
}

// ValueBatch описывает новые вопросы.
type ValueBatch struct {
	Fields []models.QuestionInput
}

func (ReferenceBatch) questionBatch() {}
func (ValueBatch) questionBatch()     {}

// AddQuestionResult содержит результат AddQuestion.
// Для ByValue заполнен Question и Created = true, для ByReference заполнен Quiz.
type AddQuestionResult struct {
	Quiz     *models.Quiz
	Question *models.Question
	Created  bool
}

// AddManyResult содержит результат AddManyQuestions.
type AddManyResult struct {
	Quiz       *models.Quiz
	Questions  []models.Question
	AddedCount int
	Created    bool
}

// QuizService определяет основной интерфейс для работы с квизами и вопросами.
type QuizService interface { //nolint:revive
	// ListQuestions возвращает все вопросы.
	ListQuestions(ctx context.Context) ([]models.Question, error)

	// GetQuestion возвращает вопрос по ID.
	GetQuestion(ctx context.Context, id string) (*models.Question, error)

	// CreateQuestion проверяет поля и создаёт вопрос.
	CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error)

	// UpdateQuestion проверяет поля и заменяет ими вопрос.
	UpdateQuestion(ctx context.Context, id string, in models.QuestionInput) (*models.Question, error)

	// DeleteQuestion удаляет вопрос. Ссылки на него в квизах остаются.
	DeleteQuestion(ctx context.Context, id string) error

	// ListQuizzes возвращает все квизы с подставленными вопросами.
	ListQuizzes(ctx context.Context) ([]models.PopulatedQuiz, error)

	// GetQuiz возвращает квиз с подставленными вопросами.
	GetQuiz(ctx context.Context, id string) (*models.PopulatedQuiz, error)

	// GetQuizWithKeyword возвращает квиз только с вопросами, помеченными keyword.
	GetQuizWithKeyword(ctx context.Context, id, keyword string) (*models.PopulatedQuiz, error)

	// CreateQuiz проверяет поля и создаёт квиз.
	CreateQuiz(ctx context.Context, in models.QuizInput) (*models.Quiz, error)

	// UpdateQuiz заменяет название и описание квиза.
	UpdateQuiz(ctx context.Context, id string, in models.QuizInput) (*models.Quiz, error)

	// DeleteQuiz удаляет квиз. Вопросы не удаляются.
	DeleteQuiz(ctx context.Context, id string) error

	// AddQuestion добавляет в квиз существующий или новый вопрос.
	AddQuestion(ctx context.Context, quizID string, src QuestionSource) (*AddQuestionResult, error)

	// AddManyQuestions добавляет в квиз несколько существующих или новых вопросов.
	AddManyQuestions(ctx context.Context, quizID string, batch QuestionBatch) (*AddManyResult, error)

	// RemoveQuestion убирает вопрос из квиза. Сам вопрос не удаляется.
	RemoveQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error)
}
