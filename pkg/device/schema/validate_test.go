package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/urmzd/commissioner/pkg/device"
)

func validRequest() map[string]any {
	return map[string]any{
		"device_name":    "NOUS A8M Socket",
		"device_address": "AA:BB:CC:DD:EE:01",
		"network_name":   "home-wifi",
		"network_secret": "s3cret",
		"passcode":       "20202021",
		"discriminator":  "3840",
	}
}

func TestValidateCommissioning_Valid(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateCommissioning(validRequest()); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidateCommissioning_Discriminator(t *testing.T) {
	v := NewValidator()

	for _, good := range []string{"0", "7", "840", "3840", "4089", "4095"} {
		p := validRequest()
		p["discriminator"] = good
		if err := v.ValidateCommissioning(p); err != nil {
			t.Errorf("discriminator %q rejected: %v", good, err)
		}
	}
	for _, bad := range []string{"", "4096", "9999", "01", "-1", "abc"} {
		p := validRequest()
		p["discriminator"] = bad
		if err := v.ValidateCommissioning(p); err == nil {
			t.Errorf("discriminator %q accepted", bad)
		}
	}
}

func TestValidateCommissioning_Passcode(t *testing.T) {
	v := NewValidator()

	for _, bad := range []string{"", "2020202", "202020211", "2020202a"} {
		p := validRequest()
		p["passcode"] = bad
		if err := v.ValidateCommissioning(p); err == nil {
			t.Errorf("passcode %q accepted", bad)
		}
	}
}

func TestValidateCommissioning_MissingNetworkName(t *testing.T) {
	v := NewValidator()
	p := validRequest()
	delete(p, "network_name")

	err := v.ValidateCommissioning(p)
	if !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	p["network_name"] = ""
	if err := v.ValidateCommissioning(p); err == nil {
		t.Error("expected empty network name to be rejected")
	}
}

func TestValidateCommissioning_Identity(t *testing.T) {
	v := NewValidator()

	for _, good := range []string{"", "1A2B3C4D5E6F7081", "0x1b669"} {
		p := validRequest()
		p["assigned_identity"] = good
		if err := v.ValidateCommissioning(p); err != nil {
			t.Errorf("identity %q rejected: %v", good, err)
		}
	}
	for _, bad := range []string{"xyz", "11112222333344445", "0x"} {
		p := validRequest()
		p["assigned_identity"] = bad
		if err := v.ValidateCommissioning(p); err == nil {
			t.Errorf("identity %q accepted", bad)
		}
	}
}

func TestValidateCommissioning_UnknownProperty(t *testing.T) {
	v := NewValidator()
	p := validRequest()
	p["node_id"] = "1"

	if err := v.ValidateCommissioning(p); err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidateScan(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateScan(map[string]any{"duration_seconds": float64(10)}); err != nil {
		t.Errorf("expected valid scan payload, got: %v", err)
	}
	if err := v.ValidateScan(map[string]any{}); err != nil {
		t.Errorf("empty scan payload should be valid, got: %v", err)
	}
	if err := v.ValidateScan(map[string]any{"duration_seconds": float64(0)}); err == nil {
		t.Error("expected zero duration to be rejected")
	}
	if err := v.ValidateScan(map[string]any{"duration_seconds": float64(500)}); err == nil {
		t.Error("expected oversized duration to be rejected")
	}
}

func TestDecodeCommissioning(t *testing.T) {
	v := NewValidator()
	body, _ := json.Marshal(validRequest())

	req, err := v.DecodeCommissioning(body)
	if err != nil {
		t.Fatal(err)
	}
	if req.NetworkName != "home-wifi" || req.Discriminator != "3840" {
		t.Errorf("unexpected request: %+v", req)
	}

	for _, bad := range []string{`not json`, `null`, `[]`, `{"passcode":"1"}`} {
		if _, err := v.DecodeCommissioning([]byte(bad)); !errors.Is(err, device.ErrValidation) {
			t.Errorf("body %s: expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	// Empty schema means no validation
	err := v.Validate(json.RawMessage(`{}`), map[string]any{
		"anything": "goes",
	})
	if err != nil {
		t.Errorf("empty schema should skip validation, got: %v", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateCommissioning(validRequest()); err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateCommissioning(validRequest()); err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateScan(map[string]any{}); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 2 {
		t.Errorf("expected 2 cached schemas, got %d", cacheSize)
	}
}
