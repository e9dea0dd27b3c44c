package mathutil

import (
	"github.com/holiman/uint256"
)

// MulDiv returns a*b/c rounded down and whether the result fits in 64 bits.
// c must not be zero.
func MulDiv(a, b, c uint64) (uint64, bool) {
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	quotient := product.Div(product, uint256.NewInt(c))
	return quotient.Uint64(), quotient.IsUint64()
}

// Min returns the smaller of a and b
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
