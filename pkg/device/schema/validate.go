package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/urmzd/commissioner/pkg/device"
)

var (
	//go:embed commissioning.json
	commissioningSchema []byte

	//go:embed scan.json
	scanSchema []byte
)

// Validator validates JSON payloads against JSON Schema documents.
// It caches compiled schemas keyed by their raw bytes.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewValidator creates a new Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Validate validates payload against the given JSON Schema document.
// Failures wrap device.ErrValidation.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	if len(schemaDoc) == 0 || string(schemaDoc) == "{}" || string(schemaDoc) == "null" {
		return nil // No schema = no validation
	}

	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	return nil
}

// ValidateCommissioning checks a raw commissioning request payload.
func (v *Validator) ValidateCommissioning(payload map[string]any) error {
	return v.Validate(commissioningSchema, payload)
}

// ValidateScan checks a raw scan request payload.
func (v *Validator) ValidateScan(payload map[string]any) error {
	return v.Validate(scanSchema, payload)
}

// DecodeCommissioning validates body and decodes it into a request.
func (v *Validator) DecodeCommissioning(body []byte) (device.CommissioningRequest, error) {
	var req device.CommissioningRequest
	payload, err := decodeObject(body)
	if err != nil {
		return req, err
	}
	if err := v.ValidateCommissioning(payload); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	return req, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", device.ErrValidation, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", device.ErrValidation)
	}
	return payload, nil
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)

	v.mu.RLock()
	if s, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	var schemaMap any
	if err := json.Unmarshal(schemaDoc, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaMap); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}
