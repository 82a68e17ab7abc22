package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitReverse64(t *testing.T) {
	require.Equal(t, uint64(0), BitReverse64(0, 6))
	require.Equal(t, uint64(32), BitReverse64(1, 6))
	require.Equal(t, uint64(1), BitReverse64(32, 6))
	for i := uint64(0); i < 256; i++ {
		require.Equal(t, i, BitReverse64(BitReverse64(i, 8), 8))
	}
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, 2, Max(1, 2))
	require.Equal(t, uint64(7), Min(uint64(7), uint64(7)))
}

func TestAllDistinct(t *testing.T) {
	require.True(t, AllDistinct([]uint64{}))
	require.True(t, AllDistinct([]uint64{1}))
	require.True(t, AllDistinct([]uint64{1, 2, 3}))
	require.False(t, AllDistinct([]uint64{1, 1}))
	require.False(t, AllDistinct([]uint64{1, 2, 3, 4, 5, 5}))
}
