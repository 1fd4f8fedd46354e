package asndb

import (
	"encoding/binary"
	"math/bits"
	"net/netip"
)

// uint128 is a 128-bit unsigned integer stored as two 64-bit words. IPv4
// addresses occupy the low 32 bits, IPv6 addresses the full width.
type uint128 struct {
	hi, lo uint64
}

// add returns the sum x + y, wrapping on overflow.
func (x uint128) add(y uint128) uint128 {
	lo, carry := bits.Add64(x.lo, y.lo, 0)
	hi, _ := bits.Add64(x.hi, y.hi, carry)
	return uint128{hi: hi, lo: lo}
}

// sub returns the difference x - y. Assumes x >= y.
func (x uint128) sub(y uint128) uint128 {
	lo, borrow := bits.Sub64(x.lo, y.lo, 0)
	hi, _ := bits.Sub64(x.hi, y.hi, borrow)
	return uint128{hi: hi, lo: lo}
}

// cmp returns -1, 0 or +1 comparing x and y as unsigned integers.
func (x uint128) cmp(y uint128) int {
	switch {
	case x.hi != y.hi:
		if x.hi < y.hi {
			return -1
		}
		return 1
	case x.lo != y.lo:
		if x.lo < y.lo {
			return -1
		}
		return 1
	}
	return 0
}

func (x uint128) isZero() bool {
	return x.hi == 0 && x.lo == 0
}

// lsh shifts x left by k bits (0 <= k < 128).
func (x uint128) lsh(k uint) uint128 {
	if k == 0 {
		return x
	}
	if k >= 64 {
		return uint128{hi: x.lo << (k - 64), lo: 0}
	}
	return uint128{hi: x.hi<<k | x.lo>>(64-k), lo: x.lo << k}
}

// trailingZeros returns the number of trailing zero bits; 128 when x is zero.
func (x uint128) trailingZeros() int {
	if x.lo != 0 {
		return bits.TrailingZeros64(x.lo)
	}
	return 64 + bits.TrailingZeros64(x.hi)
}

// bitLen returns the minimum number of bits required to represent x.
func (x uint128) bitLen() int {
	if x.hi != 0 {
		return 64 + bits.Len64(x.hi)
	}
	return bits.Len64(x.lo)
}

// familyMax returns the all-ones value for the given address family width.
func familyMax(width int) uint128 {
	if width == 32 {
		return uint128{lo: 1<<32 - 1}
	}
	return uint128{hi: ^uint64(0), lo: ^uint64(0)}
}

// addrValue returns the numeric value of an address together with the bit
// width of its family (32 or 128). The address must be unmapped.
func addrValue(ip netip.Addr) (uint128, int) {
	if ip.Is4() {
		b := ip.As4()
		return uint128{lo: uint64(binary.BigEndian.Uint32(b[:]))}, 32
	}
	b := ip.As16()
	return uint128{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}, 128
}

// valueAddr converts a numeric value back to an address of the given family.
func valueAddr(v uint128, width int) netip.Addr {
	if width == 32 {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v.lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], v.hi)
	binary.BigEndian.PutUint64(b[8:], v.lo)
	return netip.AddrFrom16(b)
}
