package usecase

import (
	"context"

	"provd/internal/domain"
)

// Signer wraps the provenance-signing primitive. All three calls may block
// on external work (cryptographic computation, timestamp authority).
type Signer interface {
	// SignAsset binds the definition to the asset, returning the signed
	// bytes and the machine-readable manifest embedded into them.
	SignAsset(ctx context.Context, asset domain.Asset, def domain.ManifestDefinition) (domain.SignedAsset, domain.GeneratedManifest, error)
	// CreateIngredient derives an ingredient reference from an asset's
	// current state.
	CreateIngredient(ctx context.Context, asset domain.Asset, creds domain.ContentCredentials) (domain.Ingredient, error)
	// ReadManifest extracts and checks the manifest chain embedded in buf.
	// Bytes with no parseable provenance yield domain.ErrNoClaim.
	ReadManifest(ctx context.Context, buf []byte, mimeType string) (domain.ReadResult, error)
}

// RecordStore persists manifest records under their derived ids. Put on an
// existing key yields domain.ErrDuplicateRecord; Get on an absent key
// yields domain.ErrNotFound. No update or delete is exposed.
type RecordStore interface {
	Put(ctx context.Context, record domain.ManifestRecord) error
	Get(ctx context.Context, manifestID string) (*domain.ManifestRecord, error)
	Exists(ctx context.Context, manifestID string) (bool, error)
}

// BlobStore persists signed asset bytes by name. Write returns the
// storage location for the record.
type BlobStore interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// PolicyEngine gates submitted credentials before any signing happens.
type PolicyEngine interface {
	Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyDecision, error)
}
