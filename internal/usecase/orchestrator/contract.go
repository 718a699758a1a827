package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonschema"

	"shiro/internal/domain"
)

// contractValidator holds pre-compiled schemas for every registered output
// contract. Compiling once at startup keeps the per-run cost to a single
// Validate call.
type contractValidator struct {
	schemas map[string]*jsonschema.Schema
}

func newContractValidator(tags []string) (*contractValidator, error) {
	compiler := jsonschema.NewCompiler()
	schemas := make(map[string]*jsonschema.Schema, len(tags))

	for _, tag := range tags {
		raw, ok := domain.ContractSchema(tag)
		if !ok {
			return nil, domain.NewDomainError("orchestrator.contracts", domain.ErrContractUnknown, tag)
		}
		schema, err := compiler.Compile([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("compile contract %q: %w", tag, err)
		}
		schemas[tag] = schema
	}
	return &contractValidator{schemas: schemas}, nil
}

// validate checks output against the named contract. An empty tag passes.
func (v *contractValidator) validate(tag string, output json.RawMessage) error {
	if tag == "" {
		return nil
	}
	schema, ok := v.schemas[tag]
	if !ok {
		return domain.NewDomainError("orchestrator.validate", domain.ErrContractUnknown, tag)
	}

	var data interface{}
	if err := json.Unmarshal(output, &data); err != nil {
		return domain.NewDomainError("orchestrator.validate", domain.ErrContractViolation,
			fmt.Sprintf("contract %q: output is not valid JSON: %v", tag, err))
	}

	result := schema.Validate(data)
	if !result.IsValid() {
		return domain.NewDomainError("orchestrator.validate", domain.ErrContractViolation,
			fmt.Sprintf("contract %q: %s", tag, result.Error()))
	}
	return nil
}
