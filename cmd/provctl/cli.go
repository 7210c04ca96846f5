package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "sign":
		return runSign(args[2:])
	case "ingredient":
		return runIngredient(args[2:])
	case "inspect":
		return runInspect(args[2:])
	case "extension":
		return runExtension(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "provctl"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s sign --in <file> --media-type <type> [--title <title>] [--author <name>] [--action <action>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s ingredient --in <file> --media-type <type> [--title <title>] [--author <name>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s inspect --in <file> --media-type <type> [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s extension --media-type <type>\n", name)
}

func writeOutput(path string, payload []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
