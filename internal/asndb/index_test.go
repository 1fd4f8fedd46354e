package asndb

import (
	"net/netip"
	"testing"
)

func rec(first, last string, asn uint32, country, desc string) Record {
	return Record{
		First:       netip.MustParseAddr(first),
		Last:        netip.MustParseAddr(last),
		ASN:         asn,
		Country:     country,
		Description: desc,
	}
}

// testIndex covers both families, a gap between IPv4 ranges, and an AS that
// announces ranges in each family. Input order is deliberately shuffled.
func testIndex() *Index {
	return Build([]Record{
		rec("192.168.0.0", "192.168.255.255", 64502, "DE", "PRIVAT-NET"),
		rec("10.0.0.0", "10.0.0.255", 64500, "US", "TEN-NET"),
		rec("2001:db8::", "2001:db8::ffff", 64500, "US", "TEN-NET-V6"),
		rec("10.0.2.0", "10.0.2.255", 64501, "FR", "DEUX-NET"),
	}, 0)
}

func TestLookup(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name string
		ip   string
		asn  uint32
		ok   bool
	}{
		{"range start", "10.0.0.0", 64500, true},
		{"range end", "10.0.0.255", 64500, true},
		{"middle", "192.168.44.7", 64502, true},
		{"gap between ranges", "10.0.1.5", 0, false},
		{"before all ranges", "9.255.255.255", 0, false},
		{"after all ranges", "193.0.0.1", 0, false},
		{"ipv6 hit", "2001:db8::1234", 64500, true},
		{"ipv6 miss", "2001:db9::", 0, false},
		{"ipv4 mapped", "::ffff:10.0.2.9", 64501, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := ix.Lookup(netip.MustParseAddr(tc.ip))
			if ok != tc.ok {
				t.Fatalf("Lookup(%s) ok = %v, want %v", tc.ip, ok, tc.ok)
			}
			if ok && r.ASN != tc.asn {
				t.Fatalf("Lookup(%s) ASN = %d, want %d", tc.ip, r.ASN, tc.asn)
			}
		})
	}

	if _, ok := ix.Lookup(netip.Addr{}); ok {
		t.Fatal("Lookup of the zero address should miss")
	}
}

func TestEmptyIndex(t *testing.T) {
	for name, ix := range map[string]*Index{
		"zero value": new(Index),
		"built":      Build(nil, 0),
	} {
		if _, ok := ix.Lookup(netip.MustParseAddr("8.8.8.8")); ok {
			t.Fatalf("%s: Lookup should miss on an empty index", name)
		}
		if _, ok := ix.LookupASN(15169); ok {
			t.Fatalf("%s: LookupASN should miss on an empty index", name)
		}
		for range ix.ASNs() {
			t.Fatalf("%s: ASNs should yield nothing", name)
		}
		if st := ix.Stats(); st.Records != 0 || st.ASNs != 0 {
			t.Fatalf("%s: empty index stats = %+v", name, st)
		}
	}
}

func TestBuildDropsUnrouted(t *testing.T) {
	ix := Build([]Record{
		rec("10.0.0.0", "10.0.0.255", 64500, "US", "TEN-NET"),
		rec("0.0.0.0", "9.255.255.255", 0, "None", "Not routed"),
		rec("224.0.0.0", "239.255.255.255", 0, "none", "Not routed"),
	}, 3)

	st := ix.Stats()
	if st.Records != 1 || st.Unrouted != 2 || st.Skipped != 3 {
		t.Fatalf("stats = %+v, want 1 record, 2 unrouted, 3 skipped", st)
	}
	if _, ok := ix.Lookup(netip.MustParseAddr("5.5.5.5")); ok {
		t.Fatal("addresses in unrouted space should miss")
	}
}

func TestBuildDropsOverlaps(t *testing.T) {
	ix := Build([]Record{
		rec("10.0.0.0", "10.0.0.255", 64500, "US", "TEN-NET"),
		rec("10.0.0.10", "10.0.0.20", 64503, "NL", "BINNEN"),
		rec("10.0.0.128", "10.0.1.10", 64501, "FR", "INTRUS"),
		rec("10.0.1.32", "10.0.1.255", 64502, "DE", "DANACH"),
	}, 0)

	if st := ix.Stats(); st.Records != 2 || st.Overlaps != 2 {
		t.Fatalf("stats = %+v, want 2 records and 2 overlaps", st)
	}
	r, ok := ix.Lookup(netip.MustParseAddr("10.0.0.200"))
	if !ok || r.ASN != 64500 {
		t.Fatalf("Lookup after overlap drop = %+v ok=%v, want AS64500", r, ok)
	}
	if _, ok := ix.Lookup(netip.MustParseAddr("10.0.1.5")); ok {
		t.Fatal("tail of a dropped overlapping range should miss")
	}
	if r, ok := ix.Lookup(netip.MustParseAddr("10.0.1.40")); !ok || r.ASN != 64502 {
		t.Fatalf("range after the dropped one = %+v ok=%v, want AS64502", r, ok)
	}
}

func TestASNDirectory(t *testing.T) {
	ix := Build([]Record{
		rec("2001:db8::", "2001:db8::ffff", 64500, "SE", "TEN-NET-LATER"),
		rec("10.0.9.0", "10.0.9.255", 64500, "US", "TEN-NET-LATER"),
		rec("10.0.0.0", "10.0.0.255", 64500, "US", "TEN-NET"),
	}, 0)

	info, ok := ix.LookupASN(64500)
	if !ok {
		t.Fatal("LookupASN(64500) missed")
	}
	if info.Ranges != 3 {
		t.Fatalf("Ranges = %d, want 3", info.Ranges)
	}
	if info.Description != "TEN-NET" || info.Country != "US" {
		t.Fatalf("directory entry = %+v, want the lowest IPv4 record to name the AS", info)
	}

	if _, ok := ix.LookupASN(65000); ok {
		t.Fatal("LookupASN of an absent AS should miss")
	}
}

func TestASNsAscendingAndRestartable(t *testing.T) {
	ix := testIndex()

	collect := func() []uint32 {
		var ns []uint32
		for info := range ix.ASNs() {
			ns = append(ns, info.ASN)
		}
		return ns
	}

	first := collect()
	want := []uint32{64500, 64501, 64502}
	if len(first) != len(want) {
		t.Fatalf("ASNs yielded %v, want %v", first, want)
	}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("ASNs yielded %v, want %v", first, want)
		}
	}

	second := collect()
	for i := range want {
		if second[i] != want[i] {
			t.Fatalf("second pass yielded %v, want %v", second, want)
		}
	}

	for range ix.ASNs() {
		break // early exit must not panic or wedge the index
	}
}

func TestRangesOrder(t *testing.T) {
	ix := testIndex()

	var got []Record
	for r := range ix.Ranges(64500) {
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("Ranges(64500) yielded %d records, want 2", len(got))
	}
	if !got[0].First.Is4() || got[1].First.Is4() {
		t.Fatal("Ranges must yield IPv4 records before IPv6")
	}

	for range ix.Ranges(65000) {
		t.Fatal("Ranges of an absent AS should yield nothing")
	}
}
