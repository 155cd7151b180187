package util

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{"10", 6, "10000000", false},
		{"0.5", 10, "5000000000", false},
		{"1.000000000000000001", 18, "1000000000000000001", false},
		{"-2.5", 1, "-25", false},
		{"0", 8, "0", false},
		{"0.123", 2, "", true},
		{"", 6, "", true},
		{"abc", 6, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		amount   int64
		decimals int
		want     string
	}{
		{10000000, 6, "10"},
		{5000000000, 10, "0.5"},
		{1, 8, "0.00000001"},
		{-25, 1, "-2.5"},
		{0, 18, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FromBaseUnits(big.NewInt(tt.amount), tt.decimals))
		})
	}
	assert.Equal(t, "0", FromBaseUnits(nil, 6))
}

func TestIfEmptyElse(t *testing.T) {
	assert.Equal(t, "def", IfEmptyElse("", "def"))
	assert.Equal(t, "v", IfEmptyElse("v", "def"))
}
