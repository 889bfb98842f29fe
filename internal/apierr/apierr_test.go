package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"request", &RequestError{Op: "GET /v1/status", Err: errors.New("connection refused")}, KindRequest},
		{"response", &ResponseError{Status: 422, Message: "invalid"}, KindResponse},
		{"validation", &ValidationError{Message: "bad input"}, KindValidation},
		{"wrapped response", fmt.Errorf("update settings: %w", &ResponseError{Message: "x"}), KindResponse},
		{"plain", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseErrorMessage(t *testing.T) {
	err := &ResponseError{
		Message: "The given data was invalid.",
		Code:    "E422",
		Errors: map[string][]string{
			"shop_url":  {"must be a url"},
			"shop_name": {"required", "too short"},
		},
	}
	want := "The given data was invalid. (code E422): shop_name: required; too short, shop_url: must be a url"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if CodeOf(err) != "E422" {
		t.Errorf("CodeOf() = %q", CodeOf(err))
	}
	if len(DetailsOf(err)) != 2 {
		t.Errorf("DetailsOf() = %v", DetailsOf(err))
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	v := &ValidationError{Message: "invalid order"}
	if v.OrNil() != nil {
		t.Fatal("expected nil with no field errors")
	}
	v.Add("recipient.country", "required")
	err := v.OrNil()
	if err == nil {
		t.Fatal("expected error after Add")
	}
	if KindOf(err) != KindValidation {
		t.Errorf("KindOf() = %q", KindOf(err))
	}
	if got := err.Error(); got != "invalid order: recipient.country: required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRequestErrorUnwrap(t *testing.T) {
	base := errors.New("timeout")
	err := &RequestError{Op: "POST /oauth/token", Err: base}
	if !errors.Is(err, base) {
		t.Error("RequestError should unwrap to its cause")
	}
	if err.Error() != "POST /oauth/token: timeout" {
		t.Errorf("Error() = %q", err.Error())
	}
}
