package asndb

import (
	"iter"
	"net/netip"
	"sort"
	"strings"
	"time"
)

// unroutedCountry marks reserved or unrouted blocks in the upstream table.
const unroutedCountry = "None"

// Index is one immutable dataset version. It keeps a sorted, non-overlapping
// record slice per address family for binary-search point lookups, plus a
// per-AS grouping built once at construction time. An Index is never mutated
// after Build returns; the zero value behaves like an empty dataset.
type Index struct {
	v4, v6 []Record

	asns  map[uint32]*asnEntry
	order []uint32

	stats Stats
}

// asnEntry groups one AS's records as ascending positions into the family
// slices, so the grouped view costs a few bytes per range instead of a copy.
type asnEntry struct {
	country     string
	description string
	v4, v6      []int32
}

// ASNInfo is the directory entry for one autonomous system.
type ASNInfo struct {
	ASN         uint32
	Country     string
	Description string
	Ranges      int
}

// Stats describes how one dataset version was built.
type Stats struct {
	Records  int // announced ranges indexed, both families
	ASNs     int // distinct autonomous systems
	Skipped  int // malformed input lines
	Unrouted int // records dropped as not announced
	Overlaps int // records dropped for overlapping a predecessor
	BuiltAt  time.Time
}

// Build constructs an Index from parsed records. Records with AS number zero
// or country "None" describe unannounced space and are dropped: absence is
// how the index represents unannounced ranges. The input does not need to be
// sorted; ranges that overlap an earlier range (after sorting) are dropped
// and counted rather than corrupting lookups. skipped is carried into the
// stats unchanged.
func Build(records []Record, skipped int) *Index {
	ix := &Index{
		asns: make(map[uint32]*asnEntry),
	}

	var unrouted int
	for _, r := range records {
		if r.ASN == 0 || strings.EqualFold(r.Country, unroutedCountry) {
			unrouted++
			continue
		}
		if r.First.Is4() {
			ix.v4 = append(ix.v4, r)
		} else {
			ix.v6 = append(ix.v6, r)
		}
	}

	var overlaps int
	ix.v4, overlaps = sortNonOverlapping(ix.v4)
	ix.stats.Overlaps += overlaps
	ix.v6, overlaps = sortNonOverlapping(ix.v6)
	ix.stats.Overlaps += overlaps

	for i, r := range ix.v4 {
		e := ix.entry(r)
		e.v4 = append(e.v4, int32(i))
	}
	for i, r := range ix.v6 {
		e := ix.entry(r)
		e.v6 = append(e.v6, int32(i))
	}

	ix.order = make([]uint32, 0, len(ix.asns))
	for n := range ix.asns {
		ix.order = append(ix.order, n)
	}
	sort.Slice(ix.order, func(i, j int) bool { return ix.order[i] < ix.order[j] })

	ix.stats.Records = len(ix.v4) + len(ix.v6)
	ix.stats.ASNs = len(ix.asns)
	ix.stats.Skipped = skipped
	ix.stats.Unrouted = unrouted
	ix.stats.BuiltAt = time.Now().UTC()
	return ix
}

// entry returns the AS entry for r, creating it on first sight. The first
// record encountered in address order fixes the AS's country and
// description; IPv4 records are walked before IPv6, so the choice is
// deterministic.
func (ix *Index) entry(r Record) *asnEntry {
	e, ok := ix.asns[r.ASN]
	if !ok {
		e = &asnEntry{country: r.Country, description: r.Description}
		ix.asns[r.ASN] = e
	}
	return e
}

// sortNonOverlapping sorts records by (First, Last) and drops any record
// whose range intersects the previous kept one, returning the survivor slice
// and the number of dropped records.
func sortNonOverlapping(recs []Record) ([]Record, int) {
	sort.Slice(recs, func(i, j int) bool {
		if c := recs[i].First.Compare(recs[j].First); c != 0 {
			return c < 0
		}
		return recs[i].Last.Compare(recs[j].Last) < 0
	})

	var dropped int
	out := recs[:0]
	for _, r := range recs {
		if len(out) > 0 && r.First.Compare(out[len(out)-1].Last) <= 0 {
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}

// Lookup returns the record announcing ip, or ok=false when the address is
// not announced. The search is a binary search over the family's sorted
// slice for the greatest First <= ip, then a bounds check against Last.
func (ix *Index) Lookup(ip netip.Addr) (Record, bool) {
	if !ip.IsValid() {
		return Record{}, false
	}
	ip = ip.Unmap()

	recs := ix.v6
	if ip.Is4() {
		recs = ix.v4
	}

	i := sort.Search(len(recs), func(i int) bool {
		return recs[i].First.Compare(ip) > 0
	})
	if i == 0 {
		return Record{}, false
	}
	if r := recs[i-1]; ip.Compare(r.Last) <= 0 {
		return r, true
	}
	return Record{}, false
}

// LookupASN returns the directory entry for an AS number.
func (ix *Index) LookupASN(n uint32) (ASNInfo, bool) {
	e, ok := ix.asns[n]
	if !ok {
		return ASNInfo{}, false
	}
	return ASNInfo{
		ASN:         n,
		Country:     e.country,
		Description: e.description,
		Ranges:      len(e.v4) + len(e.v6),
	}, true
}

// ASNs iterates the directory in ascending AS number order. The sequence is
// restartable: ranging over it again yields the same entries.
func (ix *Index) ASNs() iter.Seq[ASNInfo] {
	return func(yield func(ASNInfo) bool) {
		for _, n := range ix.order {
			info, _ := ix.LookupASN(n)
			if !yield(info) {
				return
			}
		}
	}
}

// Ranges iterates one AS's records in address order, IPv4 before IPv6.
func (ix *Index) Ranges(n uint32) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		e, ok := ix.asns[n]
		if !ok {
			return
		}
		for _, i := range e.v4 {
			if !yield(ix.v4[i]) {
				return
			}
		}
		for _, i := range e.v6 {
			if !yield(ix.v6[i]) {
				return
			}
		}
	}
}

// Stats returns the build statistics for this dataset version.
func (ix *Index) Stats() Stats {
	return ix.stats
}
