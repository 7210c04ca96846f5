// Package signer implements the provenance-signing primitive: ed25519
// over canonicalized manifest JSON, with the signed envelope embedded in
// a trailer on the asset bytes.
package signer

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"provd/internal/config"
	"provd/internal/domain"

	"github.com/google/uuid"
)

const signatureAlg = "ed25519"

type Service struct {
	key ed25519.PrivateKey
	now func() time.Time
}

func New(key ed25519.PrivateKey, now func() time.Time) (*Service, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid ed25519 private key length: %d", len(key))
	}
	if now == nil {
		now = time.Now
	}
	return &Service{key: key, now: now}, nil
}

// NewFromConfig loads the signing key from config, or generates an
// ephemeral one when none is configured. Ephemeral keys make every
// restart a new signer identity; fine for development, not for anything
// whose signatures must outlive the process.
func NewFromConfig(cfg config.Config) (*Service, error) {
	if cfg.SigningPrivateKeyBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(cfg.SigningPrivateKeyBase64)
		if err != nil {
			return nil, fmt.Errorf("decode SIGNING_PRIVATE_KEY_BASE64: %w", err)
		}
		return New(ed25519.PrivateKey(raw), nil)
	}
	if cfg.SigningPrivateKeySeedHex != "" {
		seed, err := hex.DecodeString(cfg.SigningPrivateKeySeedHex)
		if err != nil {
			return nil, fmt.Errorf("decode SIGNING_PRIVATE_KEY_SEED_HEX: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("invalid ed25519 seed length: %d", len(seed))
		}
		return New(ed25519.NewKeyFromSeed(seed), nil)
	}
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return New(key, nil)
}

// SignAsset binds def to the asset bytes under a fresh urn:uuid label and
// appends the signed manifest to any chain the bytes already carry.
func (s *Service) SignAsset(_ context.Context, asset domain.Asset, def domain.ManifestDefinition) (domain.SignedAsset, domain.GeneratedManifest, error) {
	if len(asset.Bytes) == 0 {
		return domain.SignedAsset{}, domain.GeneratedManifest{}, fmt.Errorf("%w: empty asset", domain.ErrSigning)
	}
	if asset.MimeType == "" {
		return domain.SignedAsset{}, domain.GeneratedManifest{}, fmt.Errorf("%w: asset mime type is required", domain.ErrSigning)
	}

	base, prior, err := extractEnvelope(asset.Bytes)
	if err != nil {
		// A broken trailer is treated as opaque asset content; the new
		// manifest binds it as-is.
		base = asset.Bytes
		prior = nil
	}

	generated := domain.GeneratedManifest{
		Label:          "urn:uuid:" + uuid.NewString(),
		ClaimGenerator: def.ClaimGenerator,
		Format:         def.Format,
		Title:          def.Title,
		Authors:        def.Authors,
		Assertions:     def.Assertions,
		Ingredient:     def.Ingredient,
		AssetHash:      hashBytes(base),
		SignedAt:       s.now().UTC(),
	}

	canonical, err := canonicalAny(generated)
	if err != nil {
		return domain.SignedAsset{}, domain.GeneratedManifest{}, fmt.Errorf("%w: canonicalize manifest: %v", domain.ErrSigning, err)
	}
	sig := ed25519.Sign(s.key, canonical)

	env := envelope{Schema: envelopeSchema}
	if prior != nil {
		env.Manifests = append(env.Manifests, prior.Manifests...)
	}
	env.Manifests = append(env.Manifests, signedManifestEntry{
		Manifest: generated,
		Signature: domain.Signature{
			Alg:       signatureAlg,
			PublicKey: base64.StdEncoding.EncodeToString(s.key.Public().(ed25519.PublicKey)),
			Value:     base64.StdEncoding.EncodeToString(sig),
		},
	})

	signed, err := embedEnvelope(base, env)
	if err != nil {
		return domain.SignedAsset{}, domain.GeneratedManifest{}, fmt.Errorf("%w: embed envelope: %v", domain.ErrSigning, err)
	}
	return domain.SignedAsset{Bytes: signed, MimeType: asset.MimeType}, generated, nil
}

// CreateIngredient captures the asset's current state as an ingredient
// reference. When the bytes already carry a manifest chain, the active
// label is recorded so the chain link survives.
func (s *Service) CreateIngredient(_ context.Context, asset domain.Asset, creds domain.ContentCredentials) (domain.Ingredient, error) {
	if len(asset.Bytes) == 0 {
		return domain.Ingredient{}, fmt.Errorf("%w: empty asset", domain.ErrSigning)
	}

	base, prior, err := extractEnvelope(asset.Bytes)
	if err != nil {
		base = asset.Bytes
		prior = nil
	}

	title := creds.Title
	if title == "" {
		title = "Default Title"
	}
	authors := creds.Authors
	if len(authors) == 0 {
		authors = []string{"Anonymous"}
	}
	label := creds.Label
	if label == "" {
		label = "provd.actions"
	}
	description := creds.Description
	if description == "" {
		description = "Default description"
	}
	version := creds.Version
	if version == "" {
		version = "1.0.0"
	}
	action := creds.Action
	if action == "" {
		action = domain.ActionCreated
	}

	ingredient := domain.Ingredient{
		Title:   title,
		Authors: authors,
		Format:  asset.MimeType,
		Hash:    hashBytes(base),
		Assertions: []domain.Assertion{
			{
				Label: label,
				Data: domain.AssertionData{
					Description: description,
					Version:     version,
					Actions: []domain.ActionEntry{
						{
							Action:    action,
							Timestamp: s.now().UTC().Format(time.RFC3339),
						},
					},
				},
			},
		},
	}
	if prior != nil {
		ingredient.Label = prior.Manifests[len(prior.Manifests)-1].Manifest.Label
	}
	return ingredient, nil
}

// ReadManifest extracts the embedded chain and checks every signature
// plus the active manifest's asset-hash binding. Check failures land in
// the validation status, not the error return.
func (s *Service) ReadManifest(_ context.Context, buf []byte, mimeType string) (domain.ReadResult, error) {
	if len(buf) == 0 {
		return domain.ReadResult{}, fmt.Errorf("%w: empty buffer", domain.ErrNoClaim)
	}
	base, env, err := extractEnvelope(buf)
	if err != nil {
		return domain.ReadResult{}, fmt.Errorf("%w: %v", domain.ErrNoClaim, err)
	}
	if env == nil {
		return domain.ReadResult{}, domain.ErrNoClaim
	}

	var result domain.ReadResult
	for _, entry := range env.Manifests {
		result.Manifests = append(result.Manifests, entry.Manifest)
		if reason := verifyEntry(entry); reason != "" {
			result.Status.Errors = append(result.Status.Errors, reason)
		}
	}

	active := result.Manifests[len(result.Manifests)-1]
	if hashBytes(base) != active.AssetHash {
		result.Status.Errors = append(result.Status.Errors,
			fmt.Sprintf("assertion.dataHash.mismatch: %s", active.Label))
	}
	result.ActiveManifest = &active
	return result, nil
}

func verifyEntry(entry signedManifestEntry) string {
	if entry.Signature.Alg != signatureAlg {
		return fmt.Sprintf("claimSignature.unsupportedAlg: %s", entry.Manifest.Label)
	}
	pubKey, err := base64.StdEncoding.DecodeString(entry.Signature.PublicKey)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return fmt.Sprintf("claimSignature.invalidKey: %s", entry.Manifest.Label)
	}
	sig, err := base64.StdEncoding.DecodeString(entry.Signature.Value)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Sprintf("claimSignature.invalidEncoding: %s", entry.Manifest.Label)
	}
	canonical, err := canonicalAny(entry.Manifest)
	if err != nil {
		return fmt.Sprintf("claimSignature.canonicalization: %s", entry.Manifest.Label)
	}
	if !ed25519.Verify(pubKey, canonical, sig) {
		return fmt.Sprintf("claimSignature.mismatch: %s", entry.Manifest.Label)
	}
	return ""
}

func hashBytes(buf []byte) domain.Hash {
	sum := sha256.Sum256(buf)
	return domain.Hash{Alg: "sha256", Value: hex.EncodeToString(sum[:])}
}
