package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		log.Error(err)
		os.Exit(1)
	}
}
