package domain

import "time"

// ManifestRecord is the persisted outcome of a create or update call,
// keyed by the manifest id the signer embedded into the asset. Records are
// write-once: an update produces a new record under a new id, and nothing
// deletes them.
//
// Signed is false for a first-time creation and true once an ingredient
// chain has been committed via update.
type ManifestRecord struct {
	ManifestID  string             `json:"manifestId"`
	Definition  ManifestDefinition `json:"manifest"`
	Credentials ContentCredentials `json:"contentCredentials"`
	BlobName    string             `json:"blobName"`
	BlobPath    string             `json:"filePath"`
	Signed      bool               `json:"signed"`
	CreatedAt   time.Time          `json:"createdAt"`
}
