package domain

type PolicyInput struct {
	Operation   string             `json:"operation"`
	Credentials ContentCredentials `json:"credentials"`
}

type PolicyViolation struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyDecision struct {
	Allow bool              `json:"allow"`
	Deny  []PolicyViolation `json:"deny,omitempty"`
}
