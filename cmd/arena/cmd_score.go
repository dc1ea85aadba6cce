package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/contestkit/arena/internal/domain"
	"github.com/contestkit/arena/internal/scoring"
)

func cmdScore(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: arena score <expected> <submission>")
	}
	expectedPath, submissionPath := args[0], args[1]

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(expectedPath), "."))
	format, ok := domain.ParseFormat(ext)
	if !ok {
		return &domain.UnsupportedFormatError{Format: ext}
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return fmt.Errorf("read expected output: %w", err)
	}
	submission, err := os.ReadFile(submissionPath)
	if err != nil {
		return fmt.Errorf("read submission: %w", err)
	}

	result, err := scoring.Score(expected, format, submission)
	if err != nil {
		return err
	}

	fmt.Printf("Format:  %s\n", result.Format)
	fmt.Printf("Matched: %d / %d\n", result.Matched, result.Total)
	fmt.Printf("Score:   %.2f\n", result.Score)
	if result.Perfect() {
		fmt.Println("Perfect score, next test case unlocks.")
	}
	return nil
}
