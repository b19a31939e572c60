package ctl

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizAdmin/internal/client"
	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

type runFunc = func(ctx context.Context, c client.Client, args []string) (any, error)

var commands = []*Command{
	{
		Name:    "health",
		Summary: "Check that the API and its storage are up",
		Usage:   "health",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, _ []string) (any, error) {
				return nil, c.Health(ctx)
			}
		},
	},
	{
		Name:    "quizzes",
		Summary: "List quizzes with their questions",
		Usage:   "quizzes",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, _ []string) (any, error) {
				return c.ListQuizzes(ctx)
			}
		},
	},
	{
		Name:    "questions",
		Summary: "List questions",
		Usage:   "questions",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, _ []string) (any, error) {
				return c.ListQuestions(ctx)
			}
		},
	},
	{
		Name:    "quiz",
		Summary: "Show one quiz, optionally filtered by keyword",
		Usage:   "quiz <quizId> [--keyword k | --populate]",
		Setup: func(fs *pflag.FlagSet) runFunc {
			keyword := fs.String("keyword", "", "keep only questions with this keyword")
			populate := fs.Bool("populate", false, "filter by the server default keyword")
			return func(ctx context.Context, c client.Client, args []string) (any, error) {
				if len(args) != 1 {
					return nil, usageError("quiz id is required")
				}
				if *keyword != "" || *populate {
					return c.GetQuizWithKeyword(ctx, args[0], *keyword)
				}
				return c.GetQuiz(ctx, args[0])
			}
		},
	},
	{
		Name:    "create-quiz",
		Summary: "Create a quiz",
		Usage:   "create-quiz --title t [--description d] [questionId...]",
		Setup: func(fs *pflag.FlagSet) runFunc {
			title := fs.String("title", "", "quiz title")
			description := fs.String("description", "", "quiz description")
			return func(ctx context.Context, c client.Client, args []string) (any, error) {
				if *title == "" {
					return nil, usageError("--title is required")
				}
				return c.CreateQuiz(ctx, models.QuizInput{Title: *title, Description: *description, Questions: args})
			}
		},
	},
	{
		Name:    "create-question",
		Summary: "Create a question",
		Usage:   "create-question --text t --option a --option b --correct 0 [--keyword k...]",
		Setup: func(fs *pflag.FlagSet) runFunc {
			text := fs.String("text", "", "question text")
			options := fs.StringArray("option", nil, "answer option, repeat for each option")
			correct := fs.Int("correct", 0, "index of the correct option")
			keywords := fs.StringSlice("keyword", nil, "question keywords")
			return func(ctx context.Context, c client.Client, _ []string) (any, error) {
				return c.CreateQuestion(ctx, models.QuestionInput{
					Text:               *text,
					Options:            *options,
					CorrectAnswerIndex: correct,
					Keywords:           *keywords,
				})
			}
		},
	},
	{
		Name:    "add-questions",
		Summary: "Link existing questions to a quiz",
		Usage:   "add-questions <quizId> <questionId>...",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, args []string) (any, error) {
				if len(args) < 2 {
					return nil, usageError("quiz id and at least one question id are required")
				}
				if len(args) == 2 {
					return c.AddQuestionToQuiz(ctx, args[0], args[1])
				}
				return c.AddManyQuestionsToQuiz(ctx, args[0], args[1:])
			}
		},
	},
	{
		Name:    "remove-question",
		Summary: "Unlink a question from a quiz",
		Usage:   "remove-question <quizId> <questionId>",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, args []string) (any, error) {
				if len(args) != 2 {
					return nil, usageError("quiz id and question id are required")
				}
				return c.RemoveQuestionFromQuiz(ctx, args[0], args[1])
			}
		},
	},
	{
		Name:    "delete-quiz",
		Summary: "Delete a quiz, its questions stay",
		Usage:   "delete-quiz <quizId>",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, args []string) (any, error) {
				if len(args) != 1 {
					return nil, usageError("quiz id is required")
				}
				return nil, c.DeleteQuiz(ctx, args[0])
			}
		},
	},
	{
		Name:    "delete-question",
		Summary: "Delete a question",
		Usage:   "delete-question <questionId>",
		Setup: func(*pflag.FlagSet) runFunc {
			return func(ctx context.Context, c client.Client, args []string) (any, error) {
				if len(args) != 1 {
					return nil, usageError("question id is required")
				}
				return nil, c.DeleteQuestion(ctx, args[0])
			}
		},
	},
}
