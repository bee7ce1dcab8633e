package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/david/opportunity-finder/internal/models"
)

// recordValidator re-checks model output against the opportunity JSON Schema.
type recordValidator struct {
	schema *jsonschema.Schema
}

func newRecordValidator() (*recordValidator, error) {
	data, err := json.Marshal(itemValidationSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	compiled, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, fmt.Errorf("invalid opportunity schema: %w", err)
	}
	return &recordValidator{schema: compiled}, nil
}

// Validate checks every item and decodes them into typed records. The first invalid
// item fails the whole batch.
func (v *recordValidator) Validate(items []any) ([]models.OpportunityRecord, error) {
	for i, item := range items {
		if res := v.schema.Validate(item); !res.IsValid() {
			return nil, fmt.Errorf("%w: item %d: %s", ErrMalformedRecord, i, describe(res.Errors))
		}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	var records []models.OpportunityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return records, nil
}

func describe(errs map[string]*jsonschema.EvaluationError) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, errs[k].Error()))
	}
	return strings.Join(parts, "; ")
}
