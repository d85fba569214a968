// Package policy decides auto-validation with a CEL expression over the
// verdict.
package policy

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

// Cost limit stops runaway expressions from operator supplied config.
const costLimit = 100000

// CELPolicy implements documents.AutoValidator. The expression sees
// docType, score, errors, warnings, validations and needsUpdate.
type CELPolicy struct {
	expr string
	prog cel.Program
}

func NewCELPolicy(expr string) (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("docType", cel.StringType),
		cel.Variable("score", cel.IntType),
		cel.Variable("errors", cel.ListType(cel.StringType)),
		cel.Variable("warnings", cel.ListType(cel.StringType)),
		cel.Variable("validations", cel.MapType(cel.StringType, cel.BoolType)),
		cel.Variable("needsUpdate", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile auto-validate rule: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("auto-validate rule must return bool, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return &CELPolicy{expr: expr, prog: prog}, nil
}

// Expr returns the source expression.
func (p *CELPolicy) Expr() string { return p.expr }

func (p *CELPolicy) AutoValidate(ctx context.Context, r *documents.AnalysisResult) (bool, error) {
	out, _, err := p.prog.ContextEval(ctx, map[string]any{
		"docType":     string(r.DocumentType),
		"score":       int64(r.ConfidenceScore),
		"errors":      r.Errors,
		"warnings":    r.Warnings,
		"validations": r.Validations,
		"needsUpdate": r.NeedsUpdate,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate auto-validate rule: %w", err)
	}
	ok, isBool := out.Value().(bool)
	return ok && isBool, nil
}
