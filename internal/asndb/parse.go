package asndb

import (
	"bufio"
	"bytes"
	"errors"
	"net/netip"
	"strconv"
	"strings"
)

// ErrNoRecords is returned when the input contains no parseable records at
// all, which indicates a corrupt or truncated table rather than a few bad
// lines.
var ErrNoRecords = errors.New("asndb: no records found in input")

// maxLineBytes bounds a single table line. Real descriptions stay well under
// this; anything longer is garbage input.
const maxLineBytes = 1 << 20

// Parse decodes the decompressed ip2asn table. Each line holds five
// tab-separated fields: first_ip, last_ip, as_number, country_code and
// description. The description is everything after the fourth tab and may
// itself contain tabs. Malformed lines are skipped and counted, never fatal;
// the only fatal condition is an input that yields no records at all.
func Parse(data []byte) ([]Record, int, error) {
	var (
		records []Record
		skipped int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := parseLine(line)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	if len(records) == 0 {
		return nil, skipped, ErrNoRecords
	}
	return records, skipped, nil
}

func parseLine(line string) (Record, bool) {
	parts := strings.SplitN(line, "\t", 5)
	if len(parts) != 5 {
		return Record{}, false
	}

	first, err := netip.ParseAddr(parts[0])
	if err != nil {
		return Record{}, false
	}
	last, err := netip.ParseAddr(parts[1])
	if err != nil {
		return Record{}, false
	}
	first, last = first.Unmap(), last.Unmap()
	if first.Is4() != last.Is4() || first.Compare(last) > 0 {
		return Record{}, false
	}

	asn, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Record{}, false
	}

	return Record{
		First:       first,
		Last:        last,
		ASN:         uint32(asn),
		Country:     parts[3],
		Description: parts[4],
	}, true
}
