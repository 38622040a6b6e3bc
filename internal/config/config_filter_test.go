package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFilter(t *testing.T) {
	testCases := []struct {
		name           string
		condition      string
		env            FilterCellEnv
		expectedResult bool
	}{
		{
			name:           "empty env",
			condition:      "language != ''",
			env:            FilterCellEnv{},
			expectedResult: false,
		},
		{
			name:           "kind",
			condition:      "kind == 'code'",
			env:            FilterCellEnv{Kind: "code"},
			expectedResult: true,
		},
		{
			name:           "metadata",
			condition:      "metadata.tags == 'slow'",
			env:            FilterCellEnv{Metadata: map[string]any{"tags": "slow"}},
			expectedResult: true,
		},
		{
			name:           "source prefix",
			condition:      "!hasPrefix(source, '#')",
			env:            FilterCellEnv{Source: "# Title"},
			expectedResult: false,
		},
		{
			name:           "outputs",
			condition:      "outputs > 0",
			env:            FilterCellEnv{Outputs: 2},
			expectedResult: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filter := Filter{Condition: tc.condition}

			result, err := filter.Evaluate(tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedResult, result)
		})
	}
}

func TestConfigFilter_Invalid(t *testing.T) {
	filter := Filter{Condition: "language + 1"}

	_, err := filter.Evaluate(FilterCellEnv{})
	require.ErrorContains(t, err, "failed to compile filter program")
}
