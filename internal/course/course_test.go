package course_test

import (
	"testing"

	"github.com/hamzamohiuddin1/msaconnect/internal/course"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase with space", "cse 101", "CSE101"},
		{"already canonical", "CSE101", "CSE101"},
		{"mixed case", "Cse101", "CSE101"},
		{"multiple spaces", "  cse   101  ", "CSE101"},
		{"tabs and newlines", "cse\t10\n1", "CSE101"},
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
		{"course with letter suffix", "math 20d", "MATH20D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, course.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"cse 101", "CSE101", " math 20 d ", "", "ECE 65"}
	for _, s := range inputs {
		once := course.Normalize(s)
		assert.Equal(t, once, course.Normalize(once), "normalize must be idempotent for %q", s)
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	// Different spellings of the same course must collapse to one value.
	assert.Equal(t, course.Normalize("cse 101"), course.Normalize("CSE101"))
	assert.Equal(t, "CSE101", course.Normalize("cse 101"))
}

func TestNormalizeSection(t *testing.T) {
	assert.Equal(t, "A00", course.NormalizeSection(" a00 "))
	assert.Equal(t, "B01", course.NormalizeSection("B01"))
	assert.Equal(t, "", course.NormalizeSection(""))
}
