package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lectureiq/internal/api"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "lectureiq:", err)
		if errors.Is(err, api.ErrValidation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
