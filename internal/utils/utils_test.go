package utils_test

import (
	"testing"

	"github.com/jrsteele09/forecast-dashboard/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"admin", "viewer"}, utils.ToStringSlice([]any{"admin", 3, nil, "viewer"}))
	require.Empty(t, utils.ToStringSlice(nil))
}

func TestPtrValue(t *testing.T) {
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 0, utils.Value[int](nil))
}
