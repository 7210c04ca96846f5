package domain

// ContentCredentials is the caller-supplied description of an asset's
// origin. Format is the only required field; the builder substitutes
// defaults for everything else. Never mutated after receipt.
type ContentCredentials struct {
	Format      string   `json:"format"`
	Title       string   `json:"title,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// Asset is raw media bytes plus their MIME type. Transient; lives for the
// duration of a request.
type Asset struct {
	Bytes    []byte
	MimeType string
}

// SignedAsset is an asset with an embedded, signed manifest. Produced only
// by a Signer.
type SignedAsset struct {
	Bytes    []byte
	MimeType string
}
