package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/storage"
)

// Service реализует QuizService поверх storage.Storage.
type Service struct {
	storage storage.Storage
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

var _ QuizService = (*Service)(nil)

// NewService создаёт новый Service.
func NewService(st storage.Storage, log *slog.Logger) *Service {
	return &Service{
		storage: st,
		log:     log,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:   uuid.NewString,
	}
}

// ListQuestions возвращает все вопросы.
func (s *Service) ListQuestions(ctx context.Context) ([]models.Question, error) {
	questions, err := s.storage.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	return questions, nil
}

// GetQuestion возвращает вопрос по ID.
func (s *Service) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	q, err := s.storage.GetQuestion(ctx, id)
	if err != nil {
		return nil, storageError(err, msgQuestionNotFound)
	}

	return q, nil
}

// CreateQuestion проверяет поля и создаёт вопрос.
func (s *Service) CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error) {
	if err := validateQuestion(&in); err != nil {
		return nil, err
	}

	q := s.buildQuestion(in)
	if err := s.storage.SaveQuestions(ctx, []*models.Question{q}); err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}

	s.log.Debug("question created", "question_id", q.ID)

	return q, nil
}

// UpdateQuestion проверяет поля и заменяет ими вопрос.
func (s *Service) UpdateQuestion(ctx context.Context, id string, in models.QuestionInput) (*models.Question, error) {
	if err := validateQuestion(&in); err != nil {
		return nil, err
	}

	q := s.buildQuestion(in)
	q.ID = id

	if err := s.storage.UpdateQuestion(ctx, q); err != nil {
		return nil, storageError(err, msgQuestionNotFound)
	}

	s.log.Debug("question updated", "question_id", id)

	return q, nil
}

// DeleteQuestion удаляет вопрос.
func (s *Service) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.storage.DeleteQuestion(ctx, id); err != nil {
		return storageError(err, msgQuestionNotFound)
	}

	s.log.Debug("question deleted", "question_id", id)

	return nil
}

// ListQuizzes возвращает все квизы с подставленными вопросами.
// Вопросы всех квизов загружаются одним запросом.
func (s *Service) ListQuizzes(ctx context.Context) ([]models.PopulatedQuiz, error) {
	quizzes, err := s.storage.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	var ids []string
	for _, q := range quizzes {
		ids = append(ids, q.Questions...)
	}

	byID, err := s.questionsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.PopulatedQuiz, 0, len(quizzes))
	for i := range quizzes {
		result = append(result, populate(&quizzes[i], byID, nil))
	}

	return result, nil
}

// GetQuiz возвращает квиз с подставленными вопросами.
func (s *Service) GetQuiz(ctx context.Context, id string) (*models.PopulatedQuiz, error) {
	return s.getPopulated(ctx, id, nil)
}

// GetQuizWithKeyword возвращает квиз только с вопросами, помеченными keyword.
func (s *Service) GetQuizWithKeyword(ctx context.Context, id, keyword string) (*models.PopulatedQuiz, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, newError(ErrValidation, "missing field keyword")
	}

	return s.getPopulated(ctx, id, func(q *models.Question) bool {
		return q.HasKeyword(keyword)
	})
}

// CreateQuiz проверяет поля и создаёт квиз.
// Если в in переданы вопросы, все они должны существовать.
func (s *Service) CreateQuiz(ctx context.Context, in models.QuizInput) (*models.Quiz, error) {
	if err := validateQuiz(&in); err != nil {
		return nil, err
	}

	ids := models.Unique(in.Questions)
	if err := s.ensureQuestionsExist(ctx, ids); err != nil {
		return nil, err
	}

	now := s.now()
	q := &models.Quiz{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Questions:   ids,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.SaveQuiz(ctx, q); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	s.log.Debug("quiz created", "quiz_id", q.ID, "questions", len(ids))

	return q, nil
}

// UpdateQuiz заменяет название и описание квиза. Поле questions игнорируется:
// список вопросов меняется только через AddQuestion, AddManyQuestions и RemoveQuestion.
func (s *Service) UpdateQuiz(ctx context.Context, id string, in models.QuizInput) (*models.Quiz, error) {
	if err := validateQuiz(&in); err != nil {
		return nil, err
	}

	q, err := s.storage.UpdateQuiz(ctx, &models.Quiz{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return nil, storageError(err, msgQuizNotFound)
	}

	s.log.Debug("quiz updated", "quiz_id", id)

	return q, nil
}

// DeleteQuiz удаляет квиз.
func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.storage.DeleteQuiz(ctx, id); err != nil {
		return storageError(err, msgQuizNotFound)
	}

	s.log.Debug("quiz deleted", "quiz_id", id)

	return nil
}

func (s *Service) getPopulated(ctx context.Context, id string, keep func(*models.Question) bool) (*models.PopulatedQuiz, error) {
	q, err := s.storage.GetQuiz(ctx, id)
	if err != nil {
		return nil, storageError(err, msgQuizNotFound)
	}

	byID, err := s.questionsByID(ctx, q.Questions)
	if err != nil {
		return nil, err
	}

	populated := populate(q, byID, keep)

	return &populated, nil
}

func (s *Service) questionsByID(ctx context.Context, ids []string) (map[string]models.Question, error) {
	questions, err := s.storage.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	return byID, nil
}

// ensureQuestionsExist проверяет, что все ids (без повторов) есть в хранилище.
func (s *Service) ensureQuestionsExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := s.storage.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	if len(found) != len(ids) {
		return newError(ErrNotFound, msgQuestionsNotFound)
	}

	return nil
}

func (s *Service) buildQuestion(in models.QuestionInput) *models.Question {
	now := s.now()

	keywords := slices.Clone(in.Keywords)
	if keywords == nil {
		keywords = []string{}
	}

	return &models.Question{
		ID:                 s.newID(),
		Text:               in.Text,
		Options:            slices.Clone(in.Options),
		CorrectAnswerIndex: *in.CorrectAnswerIndex,
		Keywords:           keywords,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// populate подставляет вопросы в квиз в порядке ссылок.
// Ссылки на удалённые вопросы пропускаются, keep == nil оставляет все вопросы.
func populate(q *models.Quiz, byID map[string]models.Question, keep func(*models.Question) bool) models.PopulatedQuiz {
	questions := make([]models.Question, 0, len(q.Questions))
	for _, id := range q.Questions {
		question, ok := byID[id]
		if !ok {
			continue
		}
		if keep != nil && !keep(&question) {
			continue
		}
		questions = append(questions, question)
	}

	return models.PopulatedQuiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Questions:   questions,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

// storageError переводит ошибки хранилища в ошибки сервиса.
func storageError(err error, notFoundMsg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return newError(ErrNotFound, "%s", notFoundMsg)
	}
	return fmt.Errorf("storage: %w", err)
}
