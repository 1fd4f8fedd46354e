package asndb

import "net/netip"

// Subnets returns the minimal set of CIDR blocks covering everything the AS
// announces, IPv4 blocks first, each family in ascending address order.
// Strictly adjacent ranges are merged before decomposition, so a returned
// block can span several originally-announced prefixes; that aggregation is
// intentional. ok is false when the AS number is not in the index.
func (ix *Index) Subnets(n uint32) ([]netip.Prefix, bool) {
	e, ok := ix.asns[n]
	if !ok {
		return nil, false
	}
	var prefixes []netip.Prefix
	prefixes = appendFamilySubnets(prefixes, ix.v4, e.v4)
	prefixes = appendFamilySubnets(prefixes, ix.v6, e.v6)
	return prefixes, true
}

// appendFamilySubnets walks one AS's records within a single family, merges
// runs where the next range starts exactly one address after the previous
// one ends, and decomposes each merged span into CIDR blocks. Gapped ranges
// stay separate spans.
func appendFamilySubnets(dst []netip.Prefix, recs []Record, pos []int32) []netip.Prefix {
	for k := 0; k < len(pos); {
		first := recs[pos[k]].First
		last := recs[pos[k]].Last
		k++
		for k < len(pos) && last.Next() == recs[pos[k]].First {
			last = recs[pos[k]].Last
			k++
		}
		dst = appendRangePrefixes(dst, first, last)
	}
	return dst
}

// appendRangePrefixes appends the unique minimal CIDR decomposition of the
// inclusive span [first, last]. Each emitted block is the largest one whose
// base equals the span's current start: its size is bounded by the start's
// trailing-zero alignment and by the number of addresses left in the span.
// The blocks are disjoint and ascending, and together cover the span
// exactly.
func appendRangePrefixes(dst []netip.Prefix, first, last netip.Addr) []netip.Prefix {
	lo, width := addrValue(first)
	hi, _ := addrValue(last)
	one := uint128{lo: 1}

	for lo.cmp(hi) <= 0 {
		size := lo.trailingZeros()
		if size > width {
			size = width
		}
		if lo.isZero() && hi == familyMax(width) {
			// Whole family; hi-lo+1 would wrap, and the answer is /0.
			size = width
		} else if left := hi.sub(lo).add(one); left.bitLen()-1 < size {
			size = left.bitLen() - 1
		}

		dst = append(dst, netip.PrefixFrom(valueAddr(lo, width), width-size))
		if size == width {
			break
		}
		lo = lo.add(one.lsh(uint(size)))
		if lo.isZero() {
			break
		}
	}
	return dst
}
