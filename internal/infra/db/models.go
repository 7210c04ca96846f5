package db

import "time"

type ManifestRecordModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	Format          string    `gorm:"not null"`
	Title           string    `gorm:"not null"`
	CredentialsJSON []byte    `gorm:"type:jsonb;not null"`
	DefinitionJSON  []byte    `gorm:"type:jsonb;not null"`
	BlobName        string    `gorm:"not null"`
	BlobPath        string    `gorm:"not null"`
	Signed          bool      `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (ManifestRecordModel) TableName() string {
	return "manifest_records"
}
