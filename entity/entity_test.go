package entity

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain entity", "users", "users"},
		{"leading stop words", "show me the users table", "users"},
		{"uppercase query", "Tell me about ORDERS", "orders"},
		{"first surviving token wins", "describe invoices and payments", "invoices"},
		{"punctuation stripped", "what is the structure of 'products'?", "products"},
		{"numeric token", "describe the v2 schema", "v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.query)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestResolveUnresolved(t *testing.T) {
	queries := []string{
		"",
		"   ",
		"show me the schema",
		"tell me about the structure",
		"table", // a literal stop word as the only term is unresolvable
	}

	for _, query := range queries {
		if _, err := Resolve(query); !errors.Is(err, ErrUnresolved) {
			t.Errorf("Resolve(%q) = %v, want ErrUnresolved", query, err)
		}
	}
}
