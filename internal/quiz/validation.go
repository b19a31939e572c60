package quiz

import (
	"errors"
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

var validate = newValidator()

// newValidator настраивает validator так, чтобы в ошибках были имена полей из json.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateQuestion проверяет на корректность поля вопроса.
// Текст обрезается по краям до проверки.
func validateQuestion(in *models.QuestionInput) error {
	in.Text = strings.TrimSpace(in.Text)

	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}

	if *in.CorrectAnswerIndex >= len(in.Options) {
		return newError(ErrValidation, "index of correct answer is out of range")
	}

	return nil
}

// validateQuiz проверяет на корректность поля квиза.
func validateQuiz(in *models.QuizInput) error {
	in.Title = strings.TrimSpace(in.Title)

	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}

	return nil
}

// validationError превращает первую ошибку validator в ошибку сервиса.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return newError(ErrValidation, "%s", err.Error())
	}

	fe := fieldErrs[0]

	switch {
	case fe.Tag() == "required":
		return newError(ErrValidation, "missing field %s", fe.Field())
	case fe.Tag() == "min" && fe.Field() == "options":
		return newError(ErrValidation, "amount of options must be at least two")
	case fe.Tag() == "gte" && fe.Field() == "correctAnswerIndex":
		return newError(ErrValidation, "index of correct answer must not be negative")
	default:
		return newError(ErrValidation, "invalid field %s", fe.Field())
	}
}
