// Package storagetest содержит общие тесты для реализаций storage.Storage.
package storagetest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/storage"
)

// Factory создаёт пустое хранилище для одного теста.
type Factory func(t *testing.T) storage.Storage

// BackendURL возвращает адрес живой базы из переменной key.
// Без адреса тест пропускается, а при QUIZ_REQUIRE_BACKENDS падает.
func BackendURL(t *testing.T, key string) string {
	t.Helper()

	url := os.Getenv(key)
	if url != "" {
		return url
	}

	if os.Getenv("QUIZ_REQUIRE_BACKENDS") != "" {
		t.Fatalf("%s is not set", key)
	}
	t.Skipf("%s is not set", key)

	return ""
}

// Run прогоняет общий набор проверок для хранилища.
func Run(t *testing.T, newStorage Factory) {
	t.Run("QuestionCRUD", func(t *testing.T) { testQuestionCRUD(t, newStorage(t)) })
	t.Run("SaveQuestionsBatch", func(t *testing.T) { testSaveQuestionsBatch(t, newStorage(t)) })
	t.Run("QuizCRUD", func(t *testing.T) { testQuizCRUD(t, newStorage(t)) })
	t.Run("AppendQuestion", func(t *testing.T) { testAppendQuestion(t, newStorage(t)) })
	t.Run("AppendQuestions", func(t *testing.T) { testAppendQuestions(t, newStorage(t)) })
	t.Run("RemoveQuestion", func(t *testing.T) { testRemoveQuestion(t, newStorage(t)) })
	t.Run("LinkTimestamps", func(t *testing.T) { testLinkTimestamps(t, newStorage(t)) })
	t.Run("ConcurrentAppend", func(t *testing.T) { testConcurrentAppend(t, newStorage(t)) })
}

// NewQuestion возвращает валидный вопрос с новым ID.
func NewQuestion(text string, keywords ...string) *models.Question {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Question{
		ID:                 uuid.NewString(),
		Text:               text,
		Options:            []string{"A", "B", "C"},
		CorrectAnswerIndex: 1,
		Keywords:           append([]string{}, keywords...),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// NewQuiz возвращает квиз без вопросов с новым ID.
func NewQuiz(title string) *models.Quiz {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Quiz{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testQuestionCRUD(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	list, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	q := NewQuestion("Capital of France?", "capital")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{q}))

	got, err := st.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Text, got.Text)
	assert.Equal(t, q.Options, got.Options)
	assert.Equal(t, q.CorrectAnswerIndex, got.CorrectAnswerIndex)
	assert.Equal(t, []string{"capital"}, got.Keywords)

	got.Text = "Capital of Italy?"
	got.Options = []string{"Rome", "Milan"}
	got.CorrectAnswerIndex = 0
	require.NoError(t, st.UpdateQuestion(ctx, got))

	updated, err := st.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Capital of Italy?", updated.Text)
	assert.Equal(t, []string{"Rome", "Milan"}, updated.Options)
	assert.WithinDuration(t, q.CreatedAt, updated.CreatedAt, time.Millisecond)

	list, err = st.ListQuestions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, st.DeleteQuestion(ctx, q.ID))

	_, err = st.GetQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, st.DeleteQuestion(ctx, q.ID), storage.ErrNotFound)
	assert.ErrorIs(t, st.UpdateQuestion(ctx, q), storage.ErrNotFound)
}

func testSaveQuestionsBatch(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	a := NewQuestion("a")
	b := NewQuestion("b")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{a, b}))

	found, err := st.GetQuestionsByIDs(ctx, []string{a.ID, b.ID, uuid.NewString(), a.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	list, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func testQuizCRUD(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	quiz := NewQuiz("Geography")
	quiz.Description = "world"
	require.NoError(t, st.SaveQuiz(ctx, quiz))

	got, err := st.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "Geography", got.Title)
	assert.Equal(t, "world", got.Description)
	assert.Empty(t, got.Questions)

	q := NewQuestion("q")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{q}))
	_, err = st.AppendQuestion(ctx, quiz.ID, q.ID)
	require.NoError(t, err)

	updated, err := st.UpdateQuiz(ctx, &models.Quiz{
		ID:        quiz.ID,
		Title:     "History",
		Questions: []string{"ignored"},
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "History", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, []string{q.ID}, updated.Questions)

	_, err = st.UpdateQuiz(ctx, &models.Quiz{ID: uuid.NewString(), Title: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err := st.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, st.DeleteQuiz(ctx, quiz.ID))
	_, err = st.GetQuiz(ctx, quiz.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, st.DeleteQuiz(ctx, quiz.ID), storage.ErrNotFound)

	_, err = st.GetQuestion(ctx, q.ID)
	assert.NoError(t, err)
}

func testAppendQuestion(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	quiz := NewQuiz("quiz")
	require.NoError(t, st.SaveQuiz(ctx, quiz))

	a, b := NewQuestion("a"), NewQuestion("b")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{a, b}))

	got, err := st.AppendQuestion(ctx, quiz.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, got.Questions)

	got, err = st.AppendQuestion(ctx, quiz.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, got.Questions)

	_, err = st.AppendQuestion(ctx, quiz.ID, a.ID)
	assert.ErrorIs(t, err, storage.ErrAlreadyLinked)

	_, err = st.AppendQuestion(ctx, uuid.NewString(), a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := st.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, stored.Questions)
}

func testAppendQuestions(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	quiz := NewQuiz("quiz")
	require.NoError(t, st.SaveQuiz(ctx, quiz))

	a, b, c := NewQuestion("a"), NewQuestion("b"), NewQuestion("c")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{a, b, c}))

	_, err := st.AppendQuestion(ctx, quiz.ID, a.ID)
	require.NoError(t, err)

	got, added, err := st.AppendQuestions(ctx, quiz.ID, []string{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{a.ID, b.ID}, got.Questions)

	got, added, err = st.AppendQuestions(ctx, quiz.ID, []string{c.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, got.Questions)

	got, added, err = st.AppendQuestions(ctx, quiz.ID, []string{c.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, got.Questions)

	_, _, err = st.AppendQuestions(ctx, uuid.NewString(), []string{a.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testRemoveQuestion(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	quiz := NewQuiz("quiz")
	require.NoError(t, st.SaveQuiz(ctx, quiz))

	a, b := NewQuestion("a"), NewQuestion("b")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{a, b}))
	_, _, err := st.AppendQuestions(ctx, quiz.ID, []string{a.ID, b.ID})
	require.NoError(t, err)

	got, err := st.RemoveQuestion(ctx, quiz.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.Questions)

	_, err = st.RemoveQuestion(ctx, quiz.ID, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotLinked)

	_, err = st.RemoveQuestion(ctx, uuid.NewString(), a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.GetQuestion(ctx, a.ID)
	assert.NoError(t, err)
}

func testLinkTimestamps(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	quiz := NewQuiz("quiz")
	require.NoError(t, st.SaveQuiz(ctx, quiz))

	a, b := NewQuestion("a"), NewQuestion("b")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{a, b}))

	assertStamp := func(got *models.Quiz) {
		t.Helper()
		assert.Equal(t, time.UTC, got.UpdatedAt.Location())
		assert.True(t, got.UpdatedAt.Equal(got.UpdatedAt.Truncate(time.Millisecond)), "updatedAt %s is not truncated", got.UpdatedAt)
		assert.False(t, got.UpdatedAt.Before(quiz.UpdatedAt))
	}

	got, err := st.AppendQuestion(ctx, quiz.ID, a.ID)
	require.NoError(t, err)
	assertStamp(got)

	got, _, err = st.AppendQuestions(ctx, quiz.ID, []string{b.ID})
	require.NoError(t, err)
	assertStamp(got)

	got, err = st.RemoveQuestion(ctx, quiz.ID, a.ID)
	require.NoError(t, err)
	assertStamp(got)

	stored, err := st.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assertStamp(stored)
}

func testConcurrentAppend(t *testing.T, st storage.Storage) {
	ctx := context.Background()

	quiz := NewQuiz("quiz")
	require.NoError(t, st.SaveQuiz(ctx, quiz))

	q := NewQuestion("q")
	require.NoError(t, st.SaveQuestions(ctx, []*models.Question{q}))

	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.AppendQuestion(ctx, quiz.ID, q.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, storage.ErrAlreadyLinked)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	stored, err := st.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{q.ID}, stored.Questions)
}
