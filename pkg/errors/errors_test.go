package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeFormat, "test message: %s", "value")

	if err.Code != ErrCodeFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFormat)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "FORMAT_ERROR: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeFormat, cause, "failed to parse")

	if err.Code != ErrCodeFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeSchemaAmbiguous, "test"),
			code:     ErrCodeSchemaAmbiguous,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeSchemaAmbiguous, "test"),
			code:     ErrCodeFormat,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeFormat, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeFormat,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeFormat,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeFormat,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnresolvedEndpoint, "test"),
			expected: ErrCodeUnresolvedEndpoint,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCodeStructural(t *testing.T) {
	tests := []struct {
		code     Code
		expected bool
	}{
		{ErrCodeFormat, true},
		{ErrCodeSchemaAmbiguous, true},
		{ErrCodeFileNotFound, true},
		{ErrCodeInternal, true},
		{ErrCodeUnresolvedEndpoint, false},
		{ErrCodeMissingDeviceIdentity, false},
		{ErrCodeAttributeConflict, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Structural(); got != tt.expected {
				t.Errorf("Structural() = %v, want %v", got, tt.expected)
			}
		})
	}
}
