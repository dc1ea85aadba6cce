package main

import (
	"fmt"
	"os"

	"github.com/contestkit/arena/internal/contest"
)

func cmdStrip(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: arena strip <column> <file>")
	}
	column, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	stripped, err := contest.StripColumn(data, column)
	if err != nil {
		return fmt.Errorf("strip column: %w", err)
	}

	_, err = os.Stdout.Write(stripped)
	return err
}
