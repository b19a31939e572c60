package main

import (
	"os"

	"github.com/letsssgooo/quizAdmin/internal/ctl"
)

func main() {
	os.Exit(ctl.Run(os.Args[1:], os.Stdout, os.Stderr))
}
