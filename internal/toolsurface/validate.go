package toolsurface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/regcore/internal/errs"
)

// validator compiles each tool's JSON Schema once at package init and
// reuses it across calls; the tool-surface schemas are static.
type validator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

var shared = &validator{compiled: make(map[string]*jsonschema.Schema)}

func init() {
	for _, def := range toolDefs() {
		compileTool(def)
	}
}

func compileTool(def ToolDef) {
	compiler := jsonschema.NewCompiler()
	resourceName := def.Function.Name + ".json"
	if err := compiler.AddResource(resourceName, bytes.NewReader(def.Function.Parameters)); err != nil {
		panic(fmt.Sprintf("toolsurface: invalid schema for %s: %v", def.Function.Name, err))
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		panic(fmt.Sprintf("toolsurface: schema for %s does not compile: %v", def.Function.Name, err))
	}
	shared.mu.Lock()
	shared.compiled[def.Function.Name] = schema
	shared.mu.Unlock()
}

// validateArgs validates a raw tool-call argument map against the named
// tool's JSON Schema before any component is invoked.
func validateArgs(name string, args map[string]any) error {
	shared.mu.Lock()
	schema, ok := shared.compiled[name]
	shared.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown tool %q: %w", name, errs.ErrValidation)
	}

	// Round-trip through json so numeric types match what jsonschema
	// expects from a decoded document (float64).
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshaling arguments for %q: %w", name, errs.ErrValidation)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding arguments for %q: %w", name, errs.ErrValidation)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("arguments for %q: %v: %w", name, err, errs.ErrValidation)
	}
	return nil
}
