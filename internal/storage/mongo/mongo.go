package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
	"github.com/letsssgooo/quizAdmin/internal/storage"
)

const (
	questionsCollection = "questions"
	quizzesCollection   = "quizzes"
)

// questionDoc хранит вопрос вместе с порядковым номером вставки.
type questionDoc struct {
	models.Question `bson:",inline"`
	Seq             int64 `bson:"seq"`
}

// quizDoc хранит квиз вместе с порядковым номером вставки.
type quizDoc struct {
	models.Quiz `bson:",inline"`
	Seq         int64 `bson:"seq"`
}

// Storage реализует storage.Storage поверх MongoDB.
type Storage struct {
	client    *mongo.Client
	questions *mongo.Collection
	quizzes   *mongo.Collection
	log       *slog.Logger
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage подключается к MongoDB по uri и использует базу database.
func NewStorage(ctx context.Context, uri, database string, log *slog.Logger) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Storage{
		client:    client,
		questions: db.Collection(questionsCollection),
		quizzes:   db.Collection(quizzesCollection),
		log:       log,
	}

	if err = s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info("connected to mongo", "database", database)

	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	seqIndex := mongo.IndexModel{Keys: bson.D{{Key: "seq", Value: 1}}}

	if _, err := s.questions.Indexes().CreateOne(ctx, seqIndex); err != nil {
		return fmt.Errorf("create questions index: %w", err)
	}

	if _, err := s.quizzes.Indexes().CreateOne(ctx, seqIndex); err != nil {
		return fmt.Errorf("create quizzes index: %w", err)
	}

	s.log.Debug("mongo indexes are ready")

	return nil
}

// Ping проверяет соединение с сервером.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close отключается от сервера.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ListQuestions возвращает все вопросы в порядке создания.
func (s *Storage) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return s.findQuestions(ctx, bson.M{})
}

// GetQuestion возвращает вопрос по ID.
func (s *Storage) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var doc questionDoc

	err := s.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, notFound(err, "question %s", id)
	}

	return normalizeQuestion(&doc.Question), nil
}

// GetQuestionsByIDs возвращает существующие вопросы из ids.
func (s *Storage) GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	return s.findQuestions(ctx, bson.M{"_id": bson.M{"$in": models.Unique(ids)}})
}

// SaveQuestions сохраняет вопросы одним InsertMany.
func (s *Storage) SaveQuestions(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	base := time.Now().UnixNano()
	docs := make([]interface{}, 0, len(questions))
	for i, q := range questions {
		doc := questionDoc{Question: *normalizeQuestion(q), Seq: base + int64(i)}
		docs = append(docs, doc)
	}

	if _, err := s.questions.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}

	return nil
}

// UpdateQuestion заменяет редактируемые поля вопроса.
func (s *Storage) UpdateQuestion(ctx context.Context, q *models.Question) error {
	update := bson.M{"$set": bson.M{
		"text":               q.Text,
		"options":            q.Options,
		"correctAnswerIndex": q.CorrectAnswerIndex,
		"keywords":           nonNil(q.Keywords),
		"updatedAt":          q.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc questionDoc
	err := s.questions.FindOneAndUpdate(ctx, bson.M{"_id": q.ID}, update, opts).Decode(&doc)
	if err != nil {
		return notFound(err, "question %s", q.ID)
	}

	*q = *normalizeQuestion(&doc.Question)

	return nil
}

// DeleteQuestion удаляет вопрос.
func (s *Storage) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.questions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("question %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// ListQuizzes возвращает все квизы в порядке создания.
func (s *Storage) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})

	cur, err := s.quizzes.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	quizzes := make([]models.Quiz, 0)
	for cur.Next(ctx) {
		var doc quizDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *normalizeQuiz(&doc.Quiz))
	}

	return quizzes, cur.Err()
}

// GetQuiz возвращает квиз по ID.
func (s *Storage) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	var doc quizDoc

	err := s.quizzes.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, notFound(err, "quiz %s", id)
	}

	return normalizeQuiz(&doc.Quiz), nil
}

// SaveQuiz сохраняет новый квиз.
func (s *Storage) SaveQuiz(ctx context.Context, q *models.Quiz) error {
	doc := quizDoc{Quiz: *normalizeQuiz(q), Seq: time.Now().UnixNano()}

	_, err := s.quizzes.InsertOne(ctx, doc)

	return err
}

// UpdateQuiz заменяет название и описание квиза.
func (s *Storage) UpdateQuiz(ctx context.Context, q *models.Quiz) (*models.Quiz, error) {
	update := bson.M{"$set": bson.M{
		"title":       q.Title,
		"description": q.Description,
		"updatedAt":   q.UpdatedAt,
	}}

	return s.findOneAndUpdateQuiz(ctx, bson.M{"_id": q.ID}, update, q.ID)
}

// DeleteQuiz удаляет квиз.
func (s *Storage) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.quizzes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("quiz %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// AppendQuestion добавляет questionID через $push с условием $ne.
func (s *Storage) AppendQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	filter := bson.M{"_id": quizID, "questions": bson.M{"$ne": questionID}}
	update := bson.M{
		"$push": bson.M{"questions": questionID},
		"$set":  bson.M{"updatedAt": storage.Now()},
	}

	q, err := s.findOneAndUpdateQuiz(ctx, filter, update, quizID)
	if err == nil {
		return q, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if _, err = s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("quiz %s, question %s: %w", quizID, questionID, storage.ErrAlreadyLinked)
}

// AppendQuestions добавляет отсутствующие ids через $addToSet/$each.
// Документ до изменения нужен, чтобы посчитать добавленные id.
func (s *Storage) AppendQuestions(ctx context.Context, quizID string, ids []string) (*models.Quiz, int, error) {
	now := storage.Now()
	update := bson.M{
		"$addToSet": bson.M{"questions": bson.M{"$each": ids}},
		"$set":      bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var doc quizDoc
	err := s.quizzes.FindOneAndUpdate(ctx, bson.M{"_id": quizID}, update, opts).Decode(&doc)
	if err != nil {
		return nil, 0, notFound(err, "quiz %s", quizID)
	}

	before := normalizeQuiz(&doc.Quiz)
	list, added := models.AppendMissing(before.Questions, ids)
	before.Questions = list
	before.UpdatedAt = now

	return before, len(added), nil
}

// RemoveQuestion удаляет questionID через $pull с условием на наличие.
func (s *Storage) RemoveQuestion(ctx context.Context, quizID, questionID string) (*models.Quiz, error) {
	filter := bson.M{"_id": quizID, "questions": questionID}
	update := bson.M{
		"$pull": bson.M{"questions": questionID},
		"$set":  bson.M{"updatedAt": storage.Now()},
	}

	q, err := s.findOneAndUpdateQuiz(ctx, filter, update, quizID)
	if err == nil {
		return q, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if _, err = s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("quiz %s, question %s: %w", quizID, questionID, storage.ErrNotLinked)
}

func (s *Storage) findOneAndUpdateQuiz(ctx context.Context, filter, update bson.M, quizID string) (*models.Quiz, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc quizDoc
	err := s.quizzes.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		return nil, notFound(err, "quiz %s", quizID)
	}

	return normalizeQuiz(&doc.Quiz), nil
}

func (s *Storage) findQuestions(ctx context.Context, filter bson.M) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})

	cur, err := s.questions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	questions := make([]models.Question, 0)
	for cur.Next(ctx) {
		var doc questionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		questions = append(questions, *normalizeQuestion(&doc.Question))
	}

	return questions, cur.Err()
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf(format+": %w", append(args, storage.ErrNotFound)...)
	}
	return err
}

func normalizeQuestion(q *models.Question) *models.Question {
	c := q.Clone()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c
}

func normalizeQuiz(q *models.Quiz) *models.Quiz {
	c := q.Clone()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
