package utils

import (
	"errors"

	"github.com/holiman/uint256"
)

// Fixed-point errors
var (
	ErrZeroDenominator = errors.New("zero denominator")
	ErrOverflow        = errors.New("fixed-point overflow")
)

// Ratio is an exact non-negative fraction held in 256-bit integers.
// Products of uint64 values never lose precision; truncation happens only in
// Floor.
type Ratio struct {
	num uint256.Int
	den uint256.Int
}

// NewRatio returns num/den. A zero den is reported by Floor.
func NewRatio(num, den uint64) Ratio {
	var r Ratio
	r.num.SetUint64(num)
	r.den.SetUint64(den)
	return r
}

// Whole returns v/1
func Whole(v uint64) Ratio {
	return NewRatio(v, 1)
}

// Mul returns r*o, failing if either the numerator or denominator leaves 256 bits
func (r Ratio) Mul(o Ratio) (Ratio, error) {
	var out Ratio
	if _, overflow := out.num.MulOverflow(&r.num, &o.num); overflow {
		return Ratio{}, ErrOverflow
	}
	if _, overflow := out.den.MulOverflow(&r.den, &o.den); overflow {
		return Ratio{}, ErrOverflow
	}
	return out, nil
}

// Floor returns the largest integer <= r
func (r Ratio) Floor() (uint64, error) {
	if r.den.IsZero() {
		return 0, ErrZeroDenominator
	}
	q := new(uint256.Int).Div(&r.num, &r.den)
	if !q.IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}

// MulDiv returns floor(x*y/d) with a 256-bit intermediate
func MulDiv(x, y, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrZeroDenominator
	}
	q, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(x), uint256.NewInt(y), uint256.NewInt(d))
	if overflow || !q.IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}

// CheckedAdd returns a+b, failing on uint64 wraparound
func CheckedAdd(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, ErrOverflow
	}
	return s, nil
}
