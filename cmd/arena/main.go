package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "score":
		err = cmdScore(os.Args[2:])
	case "catalog":
		err = cmdCatalog(os.Args[2:])
	case "strip":
		err = cmdStrip(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("arena %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Arena - Contest grading toolkit

Usage:
  arena <command> [arguments]

Grading Commands:
  score <expected> <submission>   Grade a submission file against an
                                  expected output file; the format is
                                  taken from the expected file extension

Organizer Commands:
  catalog <dir>                   Index a local directory by the artifact
                                  naming convention and print what the
                                  server would discover
  strip <column> <file>           Remove the answer column from a combined
                                  test-case CSV and print the result

Other:
  help            Show this help message
  version         Show version information

Examples:
  arena score TestCase_M1_T1_output.csv my_answer.csv
  arena catalog ./artifacts            # validate names before upload
  arena strip output TestCase_M1_T1.csv > input.csv`)
}
