package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"provd/internal/config"
	"provd/internal/domain"
	"provd/internal/infra/signer"
	"provd/internal/usecase"
)

func runSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var mediaType string
	var title string
	var author string
	var action string
	var outPath string
	fs.StringVar(&inPath, "in", "", "input asset path")
	fs.StringVar(&mediaType, "media-type", "", "asset media type")
	fs.StringVar(&title, "title", "", "asset title")
	fs.StringVar(&author, "author", "", "author name")
	fs.StringVar(&action, "action", "", "action tag")
	fs.StringVar(&outPath, "out", "", "signed output path (default <in>.signed)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || mediaType == "" {
		fmt.Fprintln(os.Stderr, "sign requires --in and --media-type")
		return 1
	}

	input, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read asset: %v\n", err)
		return 1
	}

	cfg := config.FromEnv()
	signingSvc, err := signer.NewFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init signer: %v\n", err)
		return 1
	}

	creds := domain.ContentCredentials{
		Format: mediaType,
		Title:  title,
		Action: action,
	}
	if author != "" {
		creds.Authors = []string{author}
	}

	builder := usecase.NewManifestBuilder(cfg.ClaimGenerator, nil)
	def, err := builder.Build(creds, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build manifest: %v\n", err)
		return 1
	}

	asset := domain.Asset{Bytes: input, MimeType: mediaType}
	signed, generated, err := signingSvc.SignAsset(context.Background(), asset, def)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign asset: %v\n", err)
		return 1
	}

	if outPath == "" {
		outPath = inPath + ".signed"
	}
	if err := os.WriteFile(outPath, signed.Bytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write signed asset: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, generated.Label)
	return 0
}

func runIngredient(args []string) int {
	fs := flag.NewFlagSet("ingredient", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	var mediaType string
	var title string
	var author string
	var outPath string
	fs.StringVar(&inPath, "in", "", "input asset path")
	fs.StringVar(&mediaType, "media-type", "", "asset media type")
	fs.StringVar(&title, "title", "", "asset title")
	fs.StringVar(&author, "author", "", "author name")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" || mediaType == "" {
		fmt.Fprintln(os.Stderr, "ingredient requires --in and --media-type")
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

	creds := domain.ContentCredentials{Format: mediaType, Title: title}
	if author != "" {
		creds.Authors = []string{author}
	}
	ingredient, err := signingSvc.CreateIngredient(context.Background(), domain.Asset{Bytes: input, MimeType: mediaType}, creds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create ingredient: %v\n", err)
		return 1
	}

	payload, err := json.MarshalIndent(ingredient, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal ingredient: %v\n", err)
		return 1
	}
	if err := writeOutput(outPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
