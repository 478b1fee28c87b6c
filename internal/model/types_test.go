package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSortMode_IsValid checks that only defined modes pass validation.
func TestSortMode_IsValid(t *testing.T) {
	assert.True(t, SortLexical.IsValid())
	assert.True(t, SortNumeric.IsValid())
	assert.False(t, SortMode("semver").IsValid())
	assert.False(t, SortMode("").IsValid())
}

// TestParseSortMode verifies string-to-mode conversion,
// including case normalization and error cases.
func TestParseSortMode(t *testing.T) {
	tests := []struct {
		input    string
		expected SortMode
		hasError bool
	}{
		{"lexical", SortLexical, false},
		{"numeric", SortNumeric, false},
		{"Numeric", SortNumeric, false}, // case insensitive
		{"LEXICAL", SortLexical, false}, // case insensitive
		{"natural", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseSortMode(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
				assert.Equal(t, string(tt.expected), result.String())
			}
		})
	}
}

// TestPlan_CandidateNames verifies names keep examined order and that an
// empty plan yields a non-nil slice.
func TestPlan_CandidateNames(t *testing.T) {
	p := &Plan{}
	names := p.CandidateNames()
	require.NotNil(t, names)
	assert.Empty(t, names)

	p.Candidates = []Candidate{{Name: "voxel-9", Version: 9}, {Name: "voxel-10", Version: 10}}
	assert.Equal(t, []string{"voxel-9", "voxel-10"}, p.CandidateNames())
}

// TestCLIError verifies the custom error type used for exit code mapping.
func TestCLIError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		err := NewCLIError(ExitSourceNotFound, "source directory not found")
		assert.Equal(t, ExitSourceNotFound, err.Code)
		assert.Equal(t, "source directory not found", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("permission denied")
		err := WrapCLIError(ExitScanFailed, "cannot list working directory", inner)
		assert.Equal(t, ExitScanFailed, err.Code)
		assert.Equal(t, "cannot list working directory: permission denied", err.Error())
		assert.Equal(t, inner, err.Unwrap())
	})

	t.Run("errors.Is chain", func(t *testing.T) {
		inner := errors.New("permission denied")
		err := WrapCLIError(ExitCopyFailed, "copy failed", inner)
		assert.True(t, errors.Is(err, inner))

		var cliErr *CLIError
		require.True(t, errors.As(error(err), &cliErr))
		assert.Equal(t, ExitCopyFailed, cliErr.Code)
	})
}
