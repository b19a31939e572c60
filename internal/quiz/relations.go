package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/storage"
)

// AddQuestion добавляет в квиз существующий (ByReference) или новый (ByValue) вопрос.
func (s *Service) AddQuestion(ctx context.Context, quizID string, src QuestionSource) (*AddQuestionResult, error) {
	if _, err := s.storage.GetQuiz(ctx, quizID); err != nil {
		return nil, storageError(err, msgQuizNotFound)
	}

	switch src := src.(type) {
	case ByReference:
		return s.addExistingQuestion(ctx, quizID, strings.TrimSpace(src.ID))
	case ByValue:
		return s.addNewQuestion(ctx, quizID, src.Fields)
	default:
		return nil, fmt.Errorf("unsupported question source %T", src)
	}
}

func (s *Service) addExistingQuestion(ctx context.Context, quizID, questionID string) (*AddQuestionResult, error) {
	if questionID == "" {
		return nil, newError(ErrValidation, msgQuestionIDRequired)
	}

	if _, err := s.storage.GetQuestion(ctx, questionID); err != nil {
		return nil, storageError(err, msgQuestionNotFound)
	}

	q, err := s.storage.AppendQuestion(ctx, quizID, questionID)
	if err != nil {
		return nil, appendError(err)
	}

	s.log.Debug("question added to quiz", "quiz_id", quizID, "question_id", questionID)

	return &AddQuestionResult{Quiz: q}, nil
}

func (s *Service) addNewQuestion(ctx context.Context, quizID string, in models.QuestionInput) (*AddQuestionResult, error) {
	question, err := s.CreateQuestion(ctx, in)
	if err != nil {
		return nil, err
	}

	q, err := s.storage.AppendQuestion(ctx, quizID, question.ID)
	if err != nil {
		s.log.Warn("question created but not linked", "quiz_id", quizID, "question_id", question.ID, "err", err)
		return nil, appendError(err)
	}

	s.log.Debug("new question added to quiz", "quiz_id", quizID, "question_id", question.ID)

	return &AddQuestionResult{Quiz: q, Question: question, Created: true}, nil
}

// AddManyQuestions добавляет в квиз несколько вопросов.
// Для ReferenceBatch все вопросы должны существовать, уже добавленные пропускаются.
// Для ValueBatch все вопросы проверяются до записи: либо создаются все, либо ни один.
// Пустой пакет ничего не меняет и возвращает квиз как есть.
func (s *Service) AddManyQuestions(ctx context.Context, quizID string, batch QuestionBatch) (*AddManyResult, error) {
	current, err := s.storage.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, storageError(err, msgQuizNotFound)
	}

	switch batch := batch.(type) {
	case ReferenceBatch:
		return s.addExistingQuestions(ctx, current, batch.IDs)
	case ValueBatch:
		return s.addNewQuestions(ctx, current, batch.Fields)
	default:
		return nil, fmt.Errorf("unsupported question batch %T", batch)
	}
}

func (s *Service) addExistingQuestions(ctx context.Context, current *models.Quiz, ids []string) (*AddManyResult, error) {
	unique := models.Unique(ids)
	if len(unique) == 0 {
		return &AddManyResult{Quiz: current}, nil
	}

	if err := s.ensureQuestionsExist(ctx, unique); err != nil {
		return nil, err
	}

	q, added, err := s.storage.AppendQuestions(ctx, current.ID, unique)
	if err != nil {
		return nil, storageError(err, msgQuizNotFound)
	}

	s.log.Debug("questions added to quiz", "quiz_id", current.ID, "requested", len(ids), "added", added)

	return &AddManyResult{Quiz: q, AddedCount: added}, nil
}

func (s *Service) addNewQuestions(ctx context.Context, current *models.Quiz, inputs []models.QuestionInput) (*AddManyResult, error) {
	if len(inputs) == 0 {
		return &AddManyResult{Quiz: current, Questions: []models.Question{}, Created: true}, nil
	}

	questions := make([]*models.Question, 0, len(inputs))
	for i := range inputs {
		if err := validateQuestion(&inputs[i]); err != nil {
			var svcErr *Error
			if errors.As(err, &svcErr) {
				return nil, newError(svcErr.Kind, "question %d: %s", i, svcErr.Message)
			}
			return nil, err
		}
		questions = append(questions, s.buildQuestion(inputs[i]))
	}

	if err := s.storage.SaveQuestions(ctx, questions); err != nil {
		return nil, fmt.Errorf("save questions: %w", err)
	}

	ids := make([]string, 0, len(questions))
	created := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		created = append(created, *q)
	}

	q, added, err := s.storage.AppendQuestions(ctx, current.ID, ids)
	if err != nil {
		s.log.Warn("questions created but not linked", "quiz_id", current.ID, "count", len(ids), "err", err)
		return nil, storageError(err, msgQuizNotFound)
	}

	s.log.Debug("new questions added to quiz", "quiz_id", current.ID, "added", added)

	return &AddManyResult{Quiz: q, Questions: created, AddedCount: added, Created: true}, nil
}

// RemoveQuestion убирает вопрос из квиза. Сам вопрос не удаляется.
func (s *Service) RemoveQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return nil, newError(ErrValidation, msgQuestionIDRequired)
	}

	q, err := s.storage.RemoveQuestion(ctx, quizID, questionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotLinked) {
			return nil, newError(ErrNotFound, msgQuestionNotInQuiz)
		}
		return nil, storageError(err, msgQuizNotFound)
	}

	s.log.Debug("question removed from quiz", "quiz_id", quizID, "question_id", questionID)

	return q, nil
}

func appendError(err error) error {
	if errors.Is(err, storage.ErrAlreadyLinked) {
		return newError(ErrAlreadyLinked, msgQuestionAlreadyInQuiz)
	}
	return storageError(err, msgQuizNotFound)
}
