package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type sample struct {
	Environment string `json:"environment" validate:"required,oneof=sandbox production"`
}

func TestValidationErrorDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"environment":"staging"}`))
	var v sample
	err := DecodeAndValidate(req, &v)
	if err == nil {
		t.Fatal("expected a validation error")
	}

	rec := httptest.NewRecorder()
	ValidationError(rec, err)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp Response[any]
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeValidation {
		t.Fatalf("error = %+v", resp.Error)
	}
	if got := resp.Error.Details["Environment"]; got != "Must be one of: sandbox production" {
		t.Errorf("detail = %q", got)
	}
}

func TestDecodeOptional(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantErr     bool
	}{
		{"empty", "", false, false},
		{"whitespace", "  \n", false, false},
		{"valid", `{"environment":"sandbox"}`, true, false},
		{"invalid value", `{"environment":"x"}`, true, true},
		{"malformed", `{`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sample
			present, err := DecodeOptional(req, &v)
			if present != tt.wantPresent || (err != nil) != tt.wantErr {
				t.Errorf("got (%v, %v)", present, err)
			}
		})
	}
}
