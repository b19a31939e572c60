package models

import (
	"slices"
	"time"
)

// Файл с моделями, которые доступны извне.
// Обработчики заполняют Input-модели данными из запроса и передают их в сервис,
// сервис собирает из них документы и передаёт в хранилище.

// Question определяет вопрос с вариантами ответа.
type Question struct {
	ID                 string    `json:"_id" bson:"_id"`
	Text               string    `json:"text" bson:"text"`
	Options            []string  `json:"options" bson:"options"`
	CorrectAnswerIndex int       `json:"correctAnswerIndex" bson:"correctAnswerIndex"`
	Keywords           []string  `json:"keywords" bson:"keywords"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasKeyword проверяет, помечен ли вопрос ключевым словом keyword (точное совпадение).
func (q *Question) HasKeyword(keyword string) bool {
	return slices.Contains(q.Keywords, keyword)
}

// Clone возвращает копию вопроса, не разделяющую слайсы с оригиналом.
func (q *Question) Clone() *Question {
	c := *q
	c.Options = slices.Clone(q.Options)
	c.Keywords = cloneOrEmpty(q.Keywords)
	return &c
}

// Quiz определяет квиз со ссылками на вопросы в порядке добавления.
type Quiz struct {
	ID          string    `json:"_id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Questions   []string  `json:"questions" bson:"questions"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasQuestion проверяет, есть ли questionID в списке вопросов квиза.
func (q *Quiz) HasQuestion(questionID string) bool {
	return slices.Contains(q.Questions, questionID)
}

// Clone возвращает копию квиза, не разделяющую слайсы с оригиналом.
func (q *Quiz) Clone() *Quiz {
	c := *q
	c.Questions = cloneOrEmpty(q.Questions)
	return &c
}

// PopulatedQuiz определяет квиз, в котором ссылки заменены на сами вопросы.
type PopulatedQuiz struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// QuestionInput определяет редактируемые поля вопроса.
type QuestionInput struct {
	Text               string   `json:"text" validate:"required"`
	Options            []string `json:"options" validate:"required,min=2"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex" validate:"required,gte=0"`
	Keywords           []string `json:"keywords"`
}

// QuizInput определяет редактируемые поля квиза.
type QuizInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
}

// AppendMissing возвращает новый слайс: list и, в порядке ids, те id,
// которых ещё нет в list. Повторы внутри ids добавляются один раз.
func AppendMissing(list, ids []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(list)+len(ids))
	for _, id := range list {
		seen[id] = struct{}{}
	}

	added := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		added = append(added, id)
	}

	result := make([]string, 0, len(list)+len(added))
	result = append(result, list...)
	result = append(result, added...)

	return result, added
}

// RemoveValue возвращает новый слайс без первого вхождения id.
// Второе значение false, если id в list не найден.
func RemoveValue(list []string, id string) ([]string, bool) {
	idx := slices.Index(list, id)
	if idx == -1 {
		return list, false
	}

	result := make([]string, 0, len(list)-1)
	result = append(result, list[:idx]...)
	result = append(result, list[idx+1:]...)

	return result, true
}

// Unique возвращает id без повторов, сохраняя порядок первого вхождения.
func Unique(ids []string) []string {
	_, unique := AppendMissing(nil, ids)
	return unique
}

func cloneOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
