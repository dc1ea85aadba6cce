package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/contestkit/arena/internal/catalog"
	"github.com/contestkit/arena/internal/domain"
)

// cmdCatalog indexes a local directory the way the server indexes a
// bucket listing, so organizers can validate artifact names before
// uploading them.
func cmdCatalog(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: arena catalog <dir>")
	}
	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	var files []domain.FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, domain.FileInfo{ID: e.Name(), Name: e.Name()})
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cat, err := catalog.Build(files, logger)
	if err != nil {
		if cat.Empty() {
			fmt.Println("No recognized artifacts found.")
			return nil
		}
		return err
	}

	for _, m := range cat.Milestones {
		fmt.Printf("Milestone %d\n", m)
		if stmt, ok := cat.ProblemStatements[m]; ok {
			fmt.Printf("  statement: %s\n", stmt.Name)
		} else {
			fmt.Println("  statement: MISSING")
		}
		for _, tc := range cat.TestCases(m) {
			key := catalog.Key{Milestone: m, TestCase: tc}
			in, hasInput := cat.Inputs[key]
			_, hasExpected := cat.ExpectedOutputs[key]

			status := "ok"
			switch {
			case hasInput && in.Combined:
				status = "combined"
			case !hasInput:
				status = "input MISSING"
			case !hasExpected:
				status = "expected output MISSING"
			}
			fmt.Printf("  test case %d: %s\n", tc, status)
		}
	}

	// Recognized artifacts vs everything in the directory
	recognized := len(cat.ProblemStatements) + len(cat.Inputs)
	for key, ref := range cat.ExpectedOutputs {
		if in, ok := cat.Inputs[key]; !ok || !in.Combined || in.FileID != ref.FileID {
			recognized++
		}
	}
	fmt.Printf("\n%d of %d files recognized\n", recognized, len(files))
	return nil
}
