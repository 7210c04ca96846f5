package usecase

import (
	"fmt"
	"time"

	"provd/internal/domain"
)

const (
	DefaultTitle       = "Default Title"
	DefaultAuthor      = "Anonymous"
	DefaultDescription = "Default description"
	DefaultVersion     = "1.0.0"
	DefaultLabelSuffix = ".actions"
)

// ManifestBuilder constructs manifest definitions from content
// credentials. It never signs and never touches storage.
type ManifestBuilder struct {
	ClaimGenerator string
	Now            func() time.Time
}

func NewManifestBuilder(claimGenerator string, now func() time.Time) *ManifestBuilder {
	if now == nil {
		now = time.Now
	}
	return &ManifestBuilder{ClaimGenerator: claimGenerator, Now: now}
}

// Build produces a fresh definition. With an ingredient attached the
// action defaults to edited; without one it defaults to created.
func (b *ManifestBuilder) Build(creds domain.ContentCredentials, ingredient *domain.Ingredient) (domain.ManifestDefinition, error) {
	if creds.Format == "" {
		return domain.ManifestDefinition{}, fmt.Errorf("%w: format is required", domain.ErrInvalidInput)
	}

	action := creds.Action
	if action == "" {
		if ingredient != nil {
			action = domain.ActionEdited
		} else {
			action = domain.ActionCreated
		}
	}

	def := domain.ManifestDefinition{
		ClaimGenerator: b.ClaimGenerator,
		Format:         creds.Format,
		Title:          titleOrDefault(creds.Title),
		Authors:        authorsOrDefault(creds.Authors),
		Assertions: []domain.Assertion{
			{
				Label: labelOrDefault(creds.Label, b.ClaimGenerator),
				Data: domain.AssertionData{
					Description: descriptionOrDefault(creds.Description),
					Version:     versionOrDefault(creds.Version),
					Actions: []domain.ActionEntry{
						{
							Action:    action,
							Timestamp: b.Now().UTC().Format(time.RFC3339),
						},
					},
				},
			},
		},
		Ingredient: ingredient,
	}
	return def, nil
}

func titleOrDefault(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}

func authorsOrDefault(authors []string) []string {
	if len(authors) == 0 {
		return []string{DefaultAuthor}
	}
	out := make([]string, len(authors))
	copy(out, authors)
	return out
}

func labelOrDefault(label, claimGenerator string) string {
	if label == "" {
		return claimGenerator + DefaultLabelSuffix
	}
	return label
}

func descriptionOrDefault(description string) string {
	if description == "" {
		return DefaultDescription
	}
	return description
}

func versionOrDefault(version string) string {
	if version == "" {
		return DefaultVersion
	}
	return version
}
