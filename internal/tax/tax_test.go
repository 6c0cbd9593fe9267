package tax

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		value     int64
		municipal string
		education string
		expected  string
	}{
		{"springfield example", 100000, "0.01200000", "0.00500000", "1700.00000000"},
		{"zero value", 0, "0.01200000", "0.00500000", "0.00000000"},
		{"zero rates", 250000, "0", "0", "0.00000000"},
		{"full precision", 123457, "0.00000001", "0.00000002", "0.00370371"},
		{"float-unfriendly rates", 3, "0.1", "0.2", "0.90000000"},
		{"upper bound rates", 1, "9.99999999", "9.99999999", "19.99999998"},
		{"large assessment", 987654321, "0.01234567", "0.00765433", "19753086.42000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.value, decimal.RequireFromString(tt.municipal), decimal.RequireFromString(tt.education))
			assert.Equal(t, tt.expected, Format(got))
		})
	}
}

// Random values and 8-digit rates must match the exact integer computation
// value * (m + e) carried out in units of 1e-8.
func TestCompute_MatchesIntegerArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		value := rng.Int63n(10_000_000)
		m := rng.Int63n(1_000_000_000)
		e := rng.Int63n(1_000_000_000)

		got := Compute(value, decimal.New(m, -Scale), decimal.New(e, -Scale))

		want := decimal.New(value*(m+e), -Scale)
		require.Truef(t, got.Equal(want), "value=%d m=%d e=%d got=%s want=%s", value, m, e, got, want)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.01700000", Format(decimal.RequireFromString("0.017")))
	assert.Equal(t, "12.00000000", Format(decimal.NewFromInt(12)))
}
