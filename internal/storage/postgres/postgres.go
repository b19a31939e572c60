package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	seq                  BIGSERIAL,
	id                   TEXT PRIMARY KEY,
	text                 TEXT NOT NULL,
	options              TEXT[] NOT NULL,
	correct_answer_index INTEGER NOT NULL,
	keywords             TEXT[] NOT NULL DEFAULT '{}',
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS quizzes (
	seq          BIGSERIAL,
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	question_ids TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
`

const (
	questionColumns = `id, text, options, correct_answer_index, keywords, created_at, updated_at`
	quizColumns     = `id, title, description, question_ids, created_at, updated_at`
)

// Storage реализует storage.Storage поверх PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage подключается к базе по dsn и создаёт таблицы, если их нет.
func NewStorage(ctx context.Context, dsn string, log *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &Storage{pool: pool, log: log}
	if err = s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("connected to postgres", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)

	return s, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	s.log.Debug("postgres schema is ready")

	return nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return conn.Conn().Ping(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// ListQuestions возвращает все вопросы в порядке создания.
func (s *Storage) ListQuestions(ctx context.Context) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions ORDER BY seq`

	return s.queryQuestions(ctx, query)
}

// GetQuestion возвращает вопрос по ID.
func (s *Storage) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	q, err := scanQuestion(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "question %s", id)
	}

	return q, nil
}

// GetQuestionsByIDs возвращает существующие вопросы из ids.
func (s *Storage) GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ANY($1) ORDER BY seq`

	return s.queryQuestions(ctx, query, models.Unique(ids))
}

// SaveQuestions сохраняет вопросы одной транзакцией.
func (s *Storage) SaveQuestions(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	query := `
	INSERT INTO questions (` + questionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(query, q.ID, q.Text, q.Options, q.CorrectAnswerIndex, nonNil(q.Keywords), q.CreatedAt, q.UpdatedAt)
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for range questions {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert question: %w", err)
			}
		}
		return results.Close()
	})
}

// UpdateQuestion заменяет редактируемые поля вопроса.
func (s *Storage) UpdateQuestion(ctx context.Context, q *models.Question) error {
	query := `
	UPDATE questions
	SET text = $2, options = $3, correct_answer_index = $4, keywords = $5, updated_at = $6
	WHERE id = $1
	RETURNING ` + questionColumns

	updated, err := scanQuestion(s.pool.QueryRow(ctx, query,
		q.ID, q.Text, q.Options, q.CorrectAnswerIndex, nonNil(q.Keywords), q.UpdatedAt))
	if err != nil {
		return notFound(err, "question %s", q.ID)
	}

	*q = *updated

	return nil
}

// DeleteQuestion удаляет вопрос.
func (s *Storage) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// ListQuizzes возвращает все квизы в порядке создания.
func (s *Storage) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]models.Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}

	return quizzes, rows.Err()
}

// GetQuiz возвращает квиз по ID.
func (s *Storage) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`

	q, err := scanQuiz(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "quiz %s", id)
	}

	return q, nil
}

// SaveQuiz сохраняет новый квиз.
func (s *Storage) SaveQuiz(ctx context.Context, q *models.Quiz) error {
	query := `
	INSERT INTO quizzes (` + quizColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query, q.ID, q.Title, q.Description, nonNil(q.Questions), q.CreatedAt, q.UpdatedAt)

	return err
}

// UpdateQuiz заменяет название и описание квиза.
func (s *Storage) UpdateQuiz(ctx context.Context, q *models.Quiz) (*models.Quiz, error) {
	query := `
	UPDATE quizzes SET title = $2, description = $3, updated_at = $4
	WHERE id = $1
	RETURNING ` + quizColumns

	updated, err := scanQuiz(s.pool.QueryRow(ctx, query, q.ID, q.Title, q.Description, q.UpdatedAt))
	if err != nil {
		return nil, notFound(err, "quiz %s", q.ID)
	}

	return updated, nil
}

// DeleteQuiz удаляет квиз.
func (s *Storage) DeleteQuiz(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quiz %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// AppendQuestion добавляет questionID одним условным UPDATE.
func (s *Storage) AppendQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	query := `
	UPDATE quizzes
	SET question_ids = array_append(question_ids, $2), updated_at = $3
	WHERE id = $1 AND NOT ($2 = ANY(question_ids))
	RETURNING ` + quizColumns

	q, err := scanQuiz(s.pool.QueryRow(ctx, query, quizID, questionID, storage.Now()))
	if err == nil {
		return q, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err = s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("quiz %s, question %s: %w", quizID, questionID, storage.ErrAlreadyLinked)
}

// AppendQuestions добавляет отсутствующие ids в транзакции с блокировкой строки квиза.
func (s *Storage) AppendQuestions(ctx context.Context, quizID string, ids []string) (*models.Quiz, int, error) {
	var (
		result *models.Quiz
		added  int
	)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1 FOR UPDATE`

		q, err := scanQuiz(tx.QueryRow(ctx, query, quizID))
		if err != nil {
			return notFound(err, "quiz %s", quizID)
		}

		list, newIDs := models.AppendMissing(q.Questions, ids)
		added = len(newIDs)
		if added == 0 {
			result = q
			return nil
		}

		update := `
		UPDATE quizzes SET question_ids = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + quizColumns

		result, err = scanQuiz(tx.QueryRow(ctx, update, quizID, list, storage.Now()))

		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return result, added, nil
}

// RemoveQuestion удаляет questionID одним условным UPDATE.
func (s *Storage) RemoveQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	query := `
	UPDATE quizzes
	SET question_ids = array_remove(question_ids, $2), updated_at = $3
	WHERE id = $1 AND $2 = ANY(question_ids)
	RETURNING ` + quizColumns

	q, err := scanQuiz(s.pool.QueryRow(ctx, query, quizID, questionID, storage.Now()))
	if err == nil {
		return q, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err = s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("quiz %s, question %s: %w", quizID, questionID, storage.ErrNotLinked)
}

func (s *Storage) queryQuestions(ctx context.Context, query string, args ...interface{}) ([]models.Question, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	return questions, rows.Err()
}

func (s *Storage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.log.Warn("rollback failed", "err", rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question

	err := row.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectAnswerIndex, &q.Keywords, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.Keywords = nonNil(q.Keywords)
	q.CreatedAt, q.UpdatedAt = q.CreatedAt.UTC(), q.UpdatedAt.UTC()

	return &q, nil
}

func scanQuiz(row pgx.Row) (*models.Quiz, error) {
	var q models.Quiz

	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Questions, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.Questions = nonNil(q.Questions)
	q.CreatedAt, q.UpdatedAt = q.CreatedAt.UTC(), q.UpdatedAt.UTC()

	return &q, nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, storage.ErrNotFound)...)
	}
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
