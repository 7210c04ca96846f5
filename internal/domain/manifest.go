package domain

import "time"

const (
	ActionCreated = "c2pa.created"
	ActionEdited  = "c2pa.edited"
)

type Hash struct {
	Alg   string `json:"alg"`
	Value string `json:"value"`
}

type ActionEntry struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp,omitempty"`
}

type AssertionData struct {
	Description string        `json:"description,omitempty"`
	Version     string        `json:"version,omitempty"`
	Actions     []ActionEntry `json:"actions"`
}

// Assertion is a labeled claim inside a manifest, e.g. an action log entry.
type Assertion struct {
	Label string        `json:"label"`
	Data  AssertionData `json:"data"`
}

// Ingredient references the prior state of an asset inside a new manifest,
// forming the provenance chain. Attached to at most one definition.
type Ingredient struct {
	Title      string      `json:"title"`
	Authors    []string    `json:"authors"`
	Format     string      `json:"format"`
	Hash       Hash        `json:"hash"`
	Label      string      `json:"label,omitempty"`
	Assertions []Assertion `json:"assertions,omitempty"`
}

// ManifestDefinition is the claim a caller wants bound to an asset. Built
// fresh per create/update call, never reused.
type ManifestDefinition struct {
	ClaimGenerator string      `json:"claim_generator"`
	Format         string      `json:"format"`
	Title          string      `json:"title"`
	Authors        []string    `json:"authors"`
	Assertions     []Assertion `json:"assertions"`
	Ingredient     *Ingredient `json:"ingredient,omitempty"`
}

type Signature struct {
	Alg       string `json:"alg"`
	PublicKey string `json:"public_key"` // base64
	Value     string `json:"value"`      // base64
}

// GeneratedManifest is the machine-readable manifest a signer embeds into
// the asset and a reader extracts back out. Label is a urn:uuid identifier
// assigned by the signer; AssetHash binds the manifest to the asset bytes.
type GeneratedManifest struct {
	Label          string      `json:"label"`
	ClaimGenerator string      `json:"claim_generator"`
	Format         string      `json:"format"`
	Title          string      `json:"title"`
	Authors        []string    `json:"authors"`
	Assertions     []Assertion `json:"assertions"`
	Ingredient     *Ingredient `json:"ingredient,omitempty"`
	AssetHash      Hash        `json:"asset_hash"`
	SignedAt       time.Time   `json:"signed_at"`
}

type ValidationStatus struct {
	Errors []string `json:"errors,omitempty"`
}

// ReadResult is what comes back from reading signed bytes: the active
// (most recent) manifest, the full chain, and the signature/integrity
// check outcome.
type ReadResult struct {
	ActiveManifest *GeneratedManifest
	Manifests      []GeneratedManifest
	Status         ValidationStatus
}

// ValidationReport is the business-level outcome of validating an asset.
// NoClaim distinguishes "no embedded provenance" from a failed check.
type ValidationReport struct {
	Valid          bool
	NoClaim        bool
	Message        string
	ActiveManifest *GeneratedManifest
}
