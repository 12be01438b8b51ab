package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kjstillabower/weathernow/internal/app"
	"github.com/kjstillabower/weathernow/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(app.ExitFailure)
	}

	os.Exit(app.Run(context.Background(), os.Args[1:], app.Options{Logger: logger}))
}
