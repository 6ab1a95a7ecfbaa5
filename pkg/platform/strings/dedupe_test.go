package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil stays nil", input: nil, expected: nil},
		{name: "empty stays empty", input: []string{}, expected: []string{}},
		{name: "trims and keeps order", input: []string{" KYC ", "AML", "KYC"}, expected: []string{"KYC", "AML"}},
		{name: "drops blanks", input: []string{"", "  ", "PEP"}, expected: []string{"PEP"}},
		{name: "case sensitive", input: []string{"kyc", "KYC"}, expected: []string{"kyc", "KYC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "folds role case", input: []string{"Reviewer", " reviewer ", "APPROVER"}, expected: []string{"reviewer", "approver"}},
		{name: "only blanks", input: []string{" ", ""}, expected: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
