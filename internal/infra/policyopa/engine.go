// Package policyopa evaluates a Rego policy against verification outcomes.
// Operators drop a .rego file (or directory of them) on disk to demand
// manual review for cases the scoring pipeline alone cannot settle, for
// example borderline confidence on high-stakes document types.
package policyopa

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/usecase"
)

const defaultQuery = "data.verifier.review.result"

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngineFromPath loads and prepares the policy at path. The policy module
// must live under package verifier.review and define a result document with
// require_review and reasons fields.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
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

func (e *Engine) Evaluate(ctx context.Context, input domain.ReviewInput) (domain.ReviewDecision, error) {
	if e == nil {
		return domain.ReviewDecision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.ReviewDecision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.ReviewDecision{}, errors.New("empty policy result")
	}
	decision, err := decodeDecision(results[0].Expressions[0].Value)
	if err != nil {
		return domain.ReviewDecision{}, err
	}
	sort.Strings(decision.Reasons)
	return decision, nil
}

func decodeDecision(value any) (domain.ReviewDecision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.ReviewDecision{}, err
	}
	var decision domain.ReviewDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return domain.ReviewDecision{}, err
	}
	return decision, nil
}

var _ usecase.ReviewPolicy = (*Engine)(nil)
