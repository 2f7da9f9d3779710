package vm

import "math/bits"

// mul128 holds a 128-bit unsigned product as two 64-bit halves.
type mul128 struct {
	hi, lo uint64
}

// mulAdd128 computes a*b+c as an exact 128-bit intermediate, the way
// the timer's host-to-virtual tick conversion needs to stay exact
// across arbitrary frequency ratios.
func mulAdd128(a, b, c uint64) mul128 {
	hi, lo := bits.Mul64(a, b)
	var carry uint64
	lo, carry = bits.Add64(lo, c, 0)
	hi, _ = bits.Add64(hi, 0, carry)
	return mul128{hi: hi, lo: lo}
}

// divmod128 divides the 128-bit value t by divisor, returning quotient
// and remainder. divisor must exceed t.hi (true for any realistic
// virtual/host frequency pairing here).
func divmod128(t mul128, divisor uint64) (quotient, remainder uint64) {
	quotient, remainder = bits.Div64(t.hi, t.lo, divisor)
	return quotient, remainder
}
