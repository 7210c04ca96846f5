package policyopa

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"provd/internal/domain"
)

const testPolicy = `package provd.policy

default allow = false

allow {
	count(deny) == 0
}

deny[violation] {
	input.credentials.format == "application/x-msdownload"
	violation := {"code": "FORMAT_BLOCKED", "message": "executable content is not signed"}
}

deny[violation] {
	input.operation == "update"
	input.credentials.title == ""
	violation := {"code": "TITLE_REQUIRED", "message": "updates must carry a title"}
}

result = {"allow": allow, "deny": deny}
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.rego")
	if err := os.WriteFile(path, []byte(testPolicy), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	engine, err := NewEngineFromPath(context.Background(), path)
	if err != nil {
		t.Fatalf("compile policy: %v", err)
	}
	return engine
}

func TestEvaluateAllows(t *testing.T) {
	engine := newTestEngine(t)
	decision, err := engine.Evaluate(context.Background(), domain.PolicyInput{
		Operation:   "create",
		Credentials: domain.ContentCredentials{Format: "image/jpeg", Title: "Sunset"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Allow || len(decision.Deny) != 0 {
		t.Fatalf("decision = %+v, want allow", decision)
	}
}

func TestEvaluateDeniesBlockedFormat(t *testing.T) {
	engine := newTestEngine(t)
	decision, err := engine.Evaluate(context.Background(), domain.PolicyInput{
		Operation:   "create",
		Credentials: domain.ContentCredentials{Format: "application/x-msdownload"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Allow {
		t.Error("blocked format allowed")
	}
	if len(decision.Deny) != 1 || decision.Deny[0].Code != "FORMAT_BLOCKED" {
		t.Fatalf("deny = %+v", decision.Deny)
	}
}

func TestEvaluateCollectsMultipleViolationsSorted(t *testing.T) {
	engine := newTestEngine(t)
	decision, err := engine.Evaluate(context.Background(), domain.PolicyInput{
		Operation:   "update",
		Credentials: domain.ContentCredentials{Format: "application/x-msdownload"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(decision.Deny) != 2 {
		t.Fatalf("deny = %+v, want 2 violations", decision.Deny)
	}
	if decision.Deny[0].Code != "FORMAT_BLOCKED" || decision.Deny[1].Code != "TITLE_REQUIRED" {
		t.Errorf("violations out of order: %+v", decision.Deny)
	}
}

func TestNewEngineRequiresPath(t *testing.T) {
	if _, err := NewEngineFromPath(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
