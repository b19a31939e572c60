package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizAdmin/internal/client"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const defaultURL = "http://localhost:4000/api"

// Command описывает одну подкоманду quizctl.
type Command struct {
	Name    string
	Summary string
	Usage   string
	// Setup регистрирует флаги команды и возвращает функцию, которая её выполняет.
	Setup func(fs *pflag.FlagSet) func(ctx context.Context, c client.Client, args []string) (any, error)
}

// Run выполняет quizctl с аргументами args и возвращает код выхода.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	fs := pflag.NewFlagSet(cmd.Name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr("QUIZ_API_URL", defaultURL), "base URL of the quiz admin API")
	run := cmd.Setup(fs)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	result, err := run(context.Background(), client.NewHTTPClient(*baseURL), fs.Args())
	if err != nil {
		var usageErr usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "%s\nUsage: quizctl %s\n", usageErr, cmd.Usage)
			return ExitUsage
		}
		fmt.Fprintf(stderr, "%s failed: %v\n", cmd.Name, err)
		return ExitError
	}

	if result == nil {
		fmt.Fprintln(stdout, "ok")
		return ExitOK
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
		return ExitError
	}

	return ExitOK
}

type usageError string

func (e usageError) Error() string { return string(e) }

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quizctl <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nEvery command accepts --url (default $QUIZ_API_URL or "+defaultURL+").")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
