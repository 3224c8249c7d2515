package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "pod-1", false},
		{"namespaced", "default/nginx-7c5ddbdf54-2xk9p", false},
		{"uid", "b0a1c2d3-e4f5-4a6b-8c7d-9e0f1a2b3c4d", false},
		{"unicode", "дом", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("node", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidGraph) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidGraph)
			}
		})
	}
}

func TestValidateAspectRatio(t *testing.T) {
	tests := []struct {
		ratio   float64
		wantErr bool
	}{
		{16.0 / 9.0, false},
		{1, false},
		{0.25, false},
		{0, true},
		{-1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidateAspectRatio(tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAspectRatio(%v) error = %v, wantErr %v", tt.ratio, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"http://localhost:4318", false},
		{"https://otel.example.com/v1/traces", false},
		{"", true},
		{"localhost:4318", true},
		{"ftp://example.com", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	supported := []string{"json", "svg", "png", "pdf"}
	if err := ValidateFormat("svg", supported...); err != nil {
		t.Errorf("ValidateFormat(svg) error = %v", err)
	}
	err := ValidateFormat("gif", supported...)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(gif) = %v, want code %v", err, ErrCodeInvalidFormat)
	}
}
