// Package valueobjects_test demonstrates testing value objects.
package valueobjects_test

import (
	"testing"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
)

// TestNewCurrency_Success tests successful currency creation.
func TestNewCurrency_Success(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "USD", code: "USD", want: "USD"},
		{name: "EUR", code: "EUR", want: "EUR"},
		{name: "GBP", code: "GBP", want: "GBP"},
		{name: "JPY", code: "JPY", want: "JPY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr, err := valueobjects.NewCurrency(tt.code)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if curr.Code() != tt.want {
				t.Errorf("Code() = %v, want %v", curr.Code(), tt.want)
			}
		})
	}
}

// TestNewCurrency_Invalid tests invalid currency codes.
func TestNewCurrency_Invalid(t *testing.T) {
	invalidCodes := []string{
		"XXXX",
		"INVALID",
		"",
		"US",
		"123",
		"usd1",
	}

	for _, code := range invalidCodes {
		t.Run(code, func(t *testing.T) {
			_, err := valueobjects.NewCurrency(code)
			if err == nil {
				t.Errorf("Expected error for invalid code %q, got nil", code)
			}
			if err != valueobjects.ErrInvalidCurrency {
				t.Errorf("Expected ErrInvalidCurrency, got %v", err)
			}
		})
	}
}

// TestNewCurrency_Whitespace tests trimming.
func TestNewCurrency_Whitespace(t *testing.T) {
	tests := []string{
		" USD ",
		" EUR ",
		"\tGBP\t",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			curr, err := valueobjects.NewCurrency(input)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(curr.Code()) != 3 {
				t.Errorf("Code length unexpected: %d", len(curr.Code()))
			}
		})
	}
}

// TestMustNewCurrency_Success tests MustNewCurrency with valid code.
func TestMustNewCurrency_Success(t *testing.T) {
	curr := valueobjects.MustNewCurrency("USD")
	if curr.Code() != "USD" {
		t.Errorf("Code() = %v, want USD", curr.Code())
	}
}

// TestMustNewCurrency_Panic tests MustNewCurrency panics on invalid code.
func TestMustNewCurrency_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic, but didn't panic")
		}
	}()

	valueobjects.MustNewCurrency("INVALID")
}

// TestCurrency_Code tests the Code accessor.
func TestCurrency_Code(t *testing.T) {
	curr := valueobjects.USD
	if curr.Code() != "USD" {
		t.Errorf("Code() = %v, want USD", curr.Code())
	}
}

// TestCurrency_Equals tests equality comparison.
func TestCurrency_Equals(t *testing.T) {
	usd1 := valueobjects.USD
	usd2, _ := valueobjects.NewCurrency("USD")
	eur := valueobjects.EUR

	if !usd1.Equals(usd2) {
		t.Error("Expected USD to equal USD")
	}

	if usd1.Equals(eur) {
		t.Error("Expected USD not to equal EUR")
	}
}

// TestCurrency_String tests string representation.
func TestCurrency_String(t *testing.T) {
	tests := []struct {
		curr valueobjects.Currency
		want string
	}{
		{curr: valueobjects.USD, want: "USD"},
		{curr: valueobjects.EUR, want: "EUR"},
		{curr: valueobjects.GBP, want: "GBP"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.curr.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCurrency_IsZero tests zero value detection.
func TestCurrency_IsZero(t *testing.T) {
	t.Run("Initialized currency is not zero", func(t *testing.T) {
		curr := valueobjects.USD
		if curr.IsZero() {
			t.Error("Expected initialized currency not to be zero")
		}
	})

	t.Run("Default currency is zero", func(t *testing.T) {
		var curr valueobjects.Currency
		if !curr.IsZero() {
			t.Error("Expected default currency to be zero")
		}
	})
}

// TestCurrency_Predefined tests predefined currency constants.
func TestCurrency_Predefined(t *testing.T) {
	tests := []struct {
		curr valueobjects.Currency
		code string
	}{
		{curr: valueobjects.USD, code: "USD"},
		{curr: valueobjects.EUR, code: "EUR"},
		{curr: valueobjects.GBP, code: "GBP"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.curr.Code() != tt.code {
				t.Errorf("Predefined %s has code %v", tt.code, tt.curr.Code())
			}
		})
	}
}

// TestCurrency_ImmutabilityThroughEquals tests value objects are compared by value.
func TestCurrency_ImmutabilityThroughEquals(t *testing.T) {
	curr1, _ := valueobjects.NewCurrency("USD")
	curr2, _ := valueobjects.NewCurrency("USD")

	if !curr1.Equals(curr2) {
		t.Error("Currencies with same code should be equal")
	}

	curr3, _ := valueobjects.NewCurrency("EUR")
	if curr1.Equals(curr3) {
		t.Error("Currencies with different codes should not be equal")
	}
}
