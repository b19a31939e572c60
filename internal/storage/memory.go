package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

// MemoryStorage реализует Storage в памяти.
// Все изменения списка вопросов квиза выполняются под одной блокировкой,
// поэтому проверка и запись атомарны.
type MemoryStorage struct {
	questions     map[string]*models.Question
	questionOrder []string
	quizzes       map[string]*models.Quiz
	quizOrder     []string
	mu            sync.RWMutex
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		questions: make(map[string]*models.Question),
		quizzes:   make(map[string]*models.Quiz),
	}
}

// ListQuestions возвращает все вопросы в порядке создания.
func (s *MemoryStorage) ListQuestions(ctx context.Context) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Question, 0, len(s.questionOrder))
	for _, id := range s.questionOrder {
		result = append(result, *s.questions[id].Clone())
	}

	return result, nil
}

// GetQuestion возвращает вопрос по ID.
func (s *MemoryStorage) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}

	return q.Clone(), nil
}

// GetQuestionsByIDs возвращает существующие вопросы из ids.
func (s *MemoryStorage) GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Question, 0, len(ids))
	for _, id := range models.Unique(ids) {
		if q, ok := s.questions[id]; ok {
			result = append(result, *q.Clone())
		}
	}

	return result, nil
}

// SaveQuestions сохраняет новые вопросы.
func (s *MemoryStorage) SaveQuestions(ctx context.Context, questions []*models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		if _, ok := s.questions[q.ID]; ok {
			return fmt.Errorf("question %s already exists", q.ID)
		}
	}

	for _, q := range questions {
		s.questions[q.ID] = q.Clone()
		s.questionOrder = append(s.questionOrder, q.ID)
	}

	return nil
}

// UpdateQuestion заменяет редактируемые поля вопроса.
func (s *MemoryStorage) UpdateQuestion(ctx context.Context, q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.questions[q.ID]
	if !ok {
		return fmt.Errorf("question %s: %w", q.ID, ErrNotFound)
	}

	updated := q.Clone()
	updated.CreatedAt = stored.CreatedAt
	s.questions[q.ID] = updated
	*q = *updated.Clone()

	return nil
}

// DeleteQuestion удаляет вопрос.
func (s *MemoryStorage) DeleteQuestion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}

	delete(s.questions, id)
	s.questionOrder, _ = models.RemoveValue(s.questionOrder, id)

	return nil
}

// ListQuizzes возвращает все квизы в порядке создания.
func (s *MemoryStorage) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Quiz, 0, len(s.quizOrder))
	for _, id := range s.quizOrder {
		result = append(result, *s.quizzes[id].Clone())
	}

	return result, nil
}

// GetQuiz возвращает квиз по ID.
func (s *MemoryStorage) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}

	return q.Clone(), nil
}

// SaveQuiz сохраняет новый квиз.
func (s *MemoryStorage) SaveQuiz(ctx context.Context, q *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[q.ID]; ok {
		return fmt.Errorf("quiz %s already exists", q.ID)
	}

	s.quizzes[q.ID] = q.Clone()
	s.quizOrder = append(s.quizOrder, q.ID)

	return nil
}

// UpdateQuiz заменяет название и описание квиза.
func (s *MemoryStorage) UpdateQuiz(ctx context.Context, q *models.Quiz) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.quizzes[q.ID]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", q.ID, ErrNotFound)
	}

	stored.Title = q.Title
	stored.Description = q.Description
	stored.UpdatedAt = q.UpdatedAt

	return stored.Clone(), nil
}

// DeleteQuiz удаляет квиз.
func (s *MemoryStorage) DeleteQuiz(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}

	delete(s.quizzes, id)
	s.quizOrder, _ = models.RemoveValue(s.quizOrder, id)

	return nil
}

// AppendQuestion добавляет questionID в квиз, если его там ещё нет.
func (s *MemoryStorage) AppendQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}

	if q.HasQuestion(questionID) {
		return nil, fmt.Errorf("quiz %s, question %s: %w", quizID, questionID, ErrAlreadyLinked)
	}

	q.Questions = append(slices.Clip(q.Questions), questionID)
	q.UpdatedAt = Now()

	return q.Clone(), nil
}

// AppendQuestions добавляет в квиз отсутствующие в нём ids.
func (s *MemoryStorage) AppendQuestions(ctx context.Context, quizID string, ids []string) (*models.Quiz, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[quizID]
	if !ok {
		return nil, 0, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}

	list, added := models.AppendMissing(q.Questions, ids)
	if len(added) > 0 {
		q.Questions = list
		q.UpdatedAt = Now()
	}

	return q.Clone(), len(added), nil
}

// RemoveQuestion удаляет questionID из квиза.
func (s *MemoryStorage) RemoveQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}

	list, ok := models.RemoveValue(q.Questions, questionID)
	if !ok {
		return nil, fmt.Errorf("quiz %s, question %s: %w", quizID, questionID, ErrNotLinked)
	}

	q.Questions = list
	q.UpdatedAt = Now()

	return q.Clone(), nil
}

// Ping всегда успешен для хранилища в памяти.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close ничего не делает.
func (s *MemoryStorage) Close(ctx context.Context) error {
	return nil
}
