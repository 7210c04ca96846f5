package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"provd/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errDBUnavailable = errors.New("db unavailable")

// RecordRepository is the postgres-backed manifest record store. Records
// are insert-only; a conflicting id is reported as a duplicate, never
// overwritten.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Put(ctx context.Context, record domain.ManifestRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if record.ManifestID == "" {
		return fmt.Errorf("%w: manifest id is required", domain.ErrInvalidInput)
	}

	credentials, err := json.Marshal(record.Credentials)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	definition, err := json.Marshal(record.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	model := ManifestRecordModel{
		ID:              record.ManifestID,
		Format:          record.Credentials.Format,
		Title:           record.Definition.Title,
		CredentialsJSON: credentials,
		DefinitionJSON:  definition,
		BlobName:        record.BlobName,
		BlobPath:        record.BlobPath,
		Signed:          record.Signed,
		CreatedAt:       record.CreatedAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, record.ManifestID)
	}
	return nil
}

func (r *RecordRepository) Get(ctx context.Context, manifestID string) (*domain.ManifestRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ManifestRecordModel
	err := r.db.WithContext(ctx).
		Where("id = ?", manifestID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	record := domain.ManifestRecord{
		ManifestID: model.ID,
		BlobName:   model.BlobName,
		BlobPath:   model.BlobPath,
		Signed:     model.Signed,
		CreatedAt:  model.CreatedAt,
	}
	if err := json.Unmarshal(model.CredentialsJSON, &record.Credentials); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	if err := json.Unmarshal(model.DefinitionJSON, &record.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &record, nil
}

func (r *RecordRepository) Exists(ctx context.Context, manifestID string) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ManifestRecordModel{}).
		Where("id = ?", manifestID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
