package errors

import (
	"strings"
	"testing"
)

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid relative", "out/topology.csv", false},
		{"valid absolute", "/tmp/topology.drawio", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "out\x00.csv", true},
		{"control char", "out\x01.csv", true},
		{"trailing slash", "out/", true},
		{"trailing backslash", "out\\", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("expected INVALID_PATH code, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateEncodingName(t *testing.T) {
	tests := []struct {
		name    string
		enc     string
		wantErr bool
	}{
		{"utf-8", "utf-8", false},
		{"utf8 alias", "utf8", false},
		{"utf-8-sig", "utf-8-sig", false},
		{"gbk", "gbk", false},
		{"universal", "universal", false},
		{"auto", "auto", false},
		{"case insensitive", "GBK", false},
		{"padded", "  utf-8  ", false},
		{"empty", "", true},
		{"unknown", "latin-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEncodingName(tt.enc)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEncodingName(%q) error = %v, wantErr %v", tt.enc, err, tt.wantErr)
			}
		})
	}
}

func TestValidateColumnName(t *testing.T) {
	tests := []struct {
		name    string
		col     string
		wantErr bool
	}{
		{"plain", "源设备名称", false},
		{"ascii", "src-device", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"control char", "col\x00umn", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumnName(tt.col)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColumnName(%q) error = %v, wantErr %v", tt.col, err, tt.wantErr)
			}
		})
	}
}
