package quiz

import (
	"errors"
	"fmt"
)

// Виды ошибок сервиса. Проверяются через errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyLinked = errors.New("already linked")
)

// Сообщения, которые видит клиент.
const (
	msgQuizNotFound          = "Quiz not found"
	msgQuestionNotFound      = "Question not found"
	msgQuestionsNotFound     = "One or more questions not found"
	msgQuestionNotInQuiz     = "Question not found in this quiz"
	msgQuestionAlreadyInQuiz = "Question already in quiz"
	msgQuestionIDRequired    = "Question ID is required"
)

// Error описывает ошибку сервиса с сообщением для клиента.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
