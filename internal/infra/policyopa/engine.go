// Package policyopa evaluates a rego policy against submitted content
// credentials before any signing happens. Policies produce a result
// document with an allow flag and a deny list of {code, message} entries.
package policyopa

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"provd/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.provd.policy.result"

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngineFromPath compiles the policy file or directory at path. The
// policy package must expose data.provd.policy.result.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("policy path is required")
	}
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{path}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyDecision, error) {
	if e == nil {
		return domain.PolicyDecision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.PolicyDecision{}, errors.New("empty policy result")
	}
	decision, err := decodeDecision(results[0].Expressions[0].Value)
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	normalizeDecision(&decision)
	return decision, nil
}

func decodeDecision(value any) (domain.PolicyDecision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	var decision domain.PolicyDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return domain.PolicyDecision{}, err
	}
	return decision, nil
}

func normalizeDecision(decision *domain.PolicyDecision) {
	if decision == nil {
		return
	}
	sort.Slice(decision.Deny, func(i, j int) bool {
		if decision.Deny[i].Code == decision.Deny[j].Code {
			return decision.Deny[i].Message < decision.Deny[j].Message
		}
		return decision.Deny[i].Code < decision.Deny[j].Code
	})
}
