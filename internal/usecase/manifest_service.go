package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"provd/internal/domain"
	"provd/internal/mediatype"

	"github.com/google/uuid"
)

const manifestLabelScheme = "urn:uuid:"

// ManifestService orchestrates builder, signer, and stores for the
// manifest lifecycle. One instance serves concurrent requests; per-key
// write serialization is the record store's concern.
type ManifestService struct {
	Builder *ManifestBuilder
	Signer  Signer
	Records RecordStore
	Blobs   BlobStore
	Policy  PolicyEngine // optional; nil skips the gate
	Now     func() time.Time
}

type CreateResult struct {
	ManifestID  string
	SignedAsset []byte
}

type ValidateByIDResult struct {
	Record domain.ManifestRecord
	Report domain.ValidationReport
}

// Create signs the uploaded bytes under a fresh ingredient-free manifest
// and persists the outcome. The blob write lands before the record put;
// a crash between the two leaves an orphaned blob, which retention
// tooling outside this service has to sweep.
func (s *ManifestService) Create(ctx context.Context, fileData string, creds domain.ContentCredentials) (*CreateResult, error) {
	return s.signAndStore(ctx, fileData, creds, false)
}

// Update re-asserts provenance over the uploaded bytes with their current
// state attached as an ingredient. The chain is self-referential: callers
// building multi-step provenance resubmit previously signed bytes, whose
// embedded history the signer preserves.
func (s *ManifestService) Update(ctx context.Context, fileData string, creds domain.ContentCredentials) (*CreateResult, error) {
	return s.signAndStore(ctx, fileData, creds, true)
}

func (s *ManifestService) signAndStore(ctx context.Context, fileData string, creds domain.ContentCredentials, withIngredient bool) (*CreateResult, error) {
	buf, err := s.decodeInput(fileData, creds.Format)
	if err != nil {
		return nil, err
	}
	if err := s.checkPolicy(ctx, creds, withIngredient); err != nil {
		return nil, err
	}

	asset := domain.Asset{Bytes: buf, MimeType: creds.Format}

	var ingredient *domain.Ingredient
	if withIngredient {
		ing, err := s.Signer.CreateIngredient(ctx, asset, creds)
		if err != nil {
			return nil, fmt.Errorf("create ingredient: %w", err)
		}
		ingredient = &ing
	}

	def, err := s.Builder.Build(creds, ingredient)
	if err != nil {
		return nil, err
	}

	signed, generated, err := s.Signer.SignAsset(ctx, asset, def)
	if err != nil {
		return nil, fmt.Errorf("sign asset: %w", err)
	}

	manifestID, err := deriveManifestID(generated)
	if err != nil {
		return nil, err
	}

	blobName := manifestID + "." + mediatype.Extension(creds.Format)
	blobPath, err := s.Blobs.Write(ctx, blobName, signed.Bytes)
	if err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}

	record := domain.ManifestRecord{
		ManifestID:  manifestID,
		Definition:  def,
		Credentials: creds,
		BlobName:    blobName,
		BlobPath:    blobPath,
		Signed:      withIngredient,
		CreatedAt:   s.now(),
	}
	if err := s.Records.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("put record: %w", err)
	}

	return &CreateResult{ManifestID: manifestID, SignedAsset: signed.Bytes}, nil
}

// ValidateByID looks up a stored record and re-verifies its blob, so a
// blob tampered with after write reports invalid instead of echoing the
// write-time trust decision.
func (s *ManifestService) ValidateByID(ctx context.Context, manifestID string) (*ValidateByIDResult, error) {
	if manifestID == "" {
		return nil, fmt.Errorf("%w: manifest id is required", domain.ErrInvalidInput)
	}
	record, err := s.Records.Get(ctx, manifestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: manifest %s", domain.ErrNotFound, manifestID)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	blob, err := s.Blobs.Read(ctx, record.BlobName)
	if err != nil {
		return nil, fmt.Errorf("%w: read stored asset: %v", domain.ErrValidationFailed, err)
	}
	report, err := s.validateBytes(ctx, blob, record.Credentials.Format)
	if err != nil {
		return nil, err
	}
	return &ValidateByIDResult{Record: *record, Report: *report}, nil
}

// ValidateByFile validates uploaded bytes directly. Bytes carrying no
// provenance are a normal outcome, reported via the NoClaim flag.
func (s *ManifestService) ValidateByFile(ctx context.Context, fileData, format string) (*domain.ValidationReport, error) {
	buf, err := s.decodeInput(fileData, format)
	if err != nil {
		return nil, err
	}
	return s.validateBytes(ctx, buf, format)
}

func (s *ManifestService) validateBytes(ctx context.Context, buf []byte, format string) (*domain.ValidationReport, error) {
	result, err := s.Signer.ReadManifest(ctx, buf, format)
	if err != nil {
		if errors.Is(err, domain.ErrNoClaim) {
			return &domain.ValidationReport{NoClaim: true, Message: "No claim found"}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	if len(result.Status.Errors) > 0 {
		return &domain.ValidationReport{
			Valid:   false,
			Message: "Found errors in validating manifest: " + strings.Join(result.Status.Errors, "; "),
		}, nil
	}
	return &domain.ValidationReport{Valid: true, ActiveManifest: result.ActiveManifest}, nil
}

func (s *ManifestService) decodeInput(fileData, format string) ([]byte, error) {
	if fileData == "" {
		return nil, fmt.Errorf("%w: fileData is required", domain.ErrInvalidInput)
	}
	if format == "" {
		return nil, fmt.Errorf("%w: format is required", domain.ErrInvalidInput)
	}
	buf, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return nil, fmt.Errorf("%w: fileData is not valid base64", domain.ErrInvalidInput)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: fileData is empty", domain.ErrInvalidInput)
	}
	return buf, nil
}

func (s *ManifestService) checkPolicy(ctx context.Context, creds domain.ContentCredentials, withIngredient bool) error {
	if s.Policy == nil {
		return nil
	}
	operation := "create"
	if withIngredient {
		operation = "update"
	}
	decision, err := s.Policy.Evaluate(ctx, domain.PolicyInput{Operation: operation, Credentials: creds})
	if err != nil {
		return fmt.Errorf("evaluate policy: %w", err)
	}
	if len(decision.Deny) > 0 {
		reasons := make([]string, 0, len(decision.Deny))
		for _, v := range decision.Deny {
			reasons = append(reasons, v.Code)
		}
		return fmt.Errorf("%w: %s", domain.ErrPolicyDenied, strings.Join(reasons, ", "))
	}
	return nil
}

func (s *ManifestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// deriveManifestID strips the urn:uuid scheme from the generated
// manifest's label. The id is never generated here; it must match what a
// validator extracts from the signed bytes.
func deriveManifestID(generated domain.GeneratedManifest) (string, error) {
	label := generated.Label
	if !strings.HasPrefix(label, manifestLabelScheme) {
		return "", fmt.Errorf("%w: manifest label %q", domain.ErrMalformedSignerOutput, label)
	}
	id := strings.TrimPrefix(label, manifestLabelScheme)
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: manifest label %q", domain.ErrMalformedSignerOutput, label)
	}
	return id, nil
}
