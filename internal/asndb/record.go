// Package asndb implements the in-memory IP-to-ASN range database: parsing
// of the ip2asn table, the immutable sorted index with its point lookups and
// per-AS grouping, CIDR aggregation of announced ranges, and the atomically
// swappable store that serves consistent snapshots to concurrent readers.
package asndb

import "net/netip"

// Record is one announced address range from the ip2asn table. Both
// addresses belong to the same family and First never exceeds Last.
type Record struct {
	First       netip.Addr
	Last        netip.Addr
	ASN         uint32
	Country     string
	Description string
}

// Contains reports whether ip falls inside the record's range. The address
// must be of the record's family.
func (r Record) Contains(ip netip.Addr) bool {
	return r.First.Compare(ip) <= 0 && ip.Compare(r.Last) <= 0
}
