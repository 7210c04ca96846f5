package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"provd/internal/config"
	"provd/internal/domain"
	"provd/internal/infra/signer"
	"provd/internal/mediatype"
)

type inspectReport struct {
	NoClaim        bool                      `json:"noClaim,omitempty"`
	ActiveManifest *domain.GeneratedManifest `json:"activeManifest,omitempty"`
	Manifests      int                       `json:"manifests"`
	Errors         []string                  `json:"errors,omitempty"`
}

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var mediaType string
	var outPath string
	fs.StringVar(&inPath, "in", "", "input asset path")
	fs.StringVar(&mediaType, "media-type", "", "asset media type")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || mediaType == "" {
		fmt.Fprintln(os.Stderr, "inspect requires --in and --media-type")
		return 1
	}

	input, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read asset: %v\n", err)
		return 1
	}

	signingSvc, err := signer.NewFromConfig(config.FromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init signer: %v\n", err)
		return 1
	}

	var report inspectReport
	result, err := signingSvc.ReadManifest(context.Background(), input, mediaType)
	switch {
	case errors.Is(err, domain.ErrNoClaim):
		report.NoClaim = true
	case err != nil:
		fmt.Fprintf(os.Stderr, "read manifest: %v\n", err)
		return 1
	default:
		report.ActiveManifest = result.ActiveManifest
		report.Manifests = len(result.Manifests)
		report.Errors = result.Status.Errors
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal report: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func runExtension(args []string) int {
	fs := flag.NewFlagSet("extension", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var mediaType string
	fs.StringVar(&mediaType, "media-type", "", "media type to resolve")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if mediaType == "" {
		fmt.Fprintln(os.Stderr, "extension requires --media-type")
		return 1
	}
	fmt.Fprintln(os.Stdout, mediatype.Extension(mediaType))
	return 0
}
