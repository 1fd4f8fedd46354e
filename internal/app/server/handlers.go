package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"iptoasn/internal/asndb"
)

const (
	maxBulkBody = 10 << 20
	maxBulkIPs  = 10000
)

// IPLookup answers "which AS announces this address". The JSON field names
// are the wire format; optional fields stay absent when the address is not
// announced.
type IPLookup struct {
	IP          string `json:"ip"`
	Announced   bool   `json:"announced"`
	FirstIP     string `json:"first_ip,omitempty"`
	LastIP      string `json:"last_ip,omitempty"`
	ASNumber    uint32 `json:"as_number,omitempty"`
	CountryCode string `json:"as_country_code,omitempty"`
	Description string `json:"as_description,omitempty"`
}

// ASNEntry describes one autonomous system in directory answers.
type ASNEntry struct {
	ASNumber    uint32 `json:"as_number"`
	CountryCode string `json:"as_country_code"`
	Description string `json:"as_description"`
	Ranges      int    `json:"announced_ranges"`
}

// SubnetsResponse lists the aggregated CIDR blocks of one AS.
type SubnetsResponse struct {
	ASNumber uint32   `json:"as_number"`
	Subnets  []string `json:"subnets"`
}

type bulkRequest struct {
	IPs []string `json:"ips"`
}

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "iptoasn-webservice\n")
}

func (s *server) lookupIP(w http.ResponseWriter, r *http.Request) {
	ix := s.store.Current()
	s.renderLookup(w, r, ResolveIP(ix, chi.URLParam(r, "ip")))
}

func (s *server) lookupBulk(w http.ResponseWriter, r *http.Request) {
	ips, err := bulkInput(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, r, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	if len(ips) == 0 {
		respondError(w, r, http.StatusBadRequest, "no addresses given")
		return
	}
	if len(ips) > maxBulkIPs {
		respondError(w, r, http.StatusBadRequest,
			fmt.Sprintf("too many addresses: %d, limit is %d", len(ips), maxBulkIPs))
		return
	}

	// One snapshot for the whole batch keeps the answers mutually
	// consistent even when a refresh lands mid-request.
	ix := s.store.Current()
	out := make([]IPLookup, 0, len(ips))
	for _, raw := range ips {
		out = append(out, ResolveIP(ix, strings.TrimSpace(raw)))
	}

	if acceptedType(r) == render.ContentTypePlainText {
		var b strings.Builder
		for _, item := range out {
			b.WriteString(item.String())
			b.WriteByte('\n')
		}
		render.PlainText(w, r, b.String())
		return
	}
	render.JSON(w, r, out)
}

func (s *server) lookupASN(w http.ResponseWriter, r *http.Request) {
	n, err := ParseASN(chi.URLParam(r, "asn"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid AS number")
		return
	}

	info, ok := s.store.Current().LookupASN(n)
	if !ok {
		respondError(w, r, http.StatusNotFound, fmt.Sprintf("AS%d not found", n))
		return
	}

	entry := NewASNEntry(info)
	if acceptedType(r) == render.ContentTypePlainText {
		render.PlainText(w, r, entry.String()+"\n")
		return
	}
	render.JSON(w, r, entry)
}

func (s *server) listASNs(w http.ResponseWriter, r *http.Request) {
	ix := s.store.Current()
	entries := make([]ASNEntry, 0, ix.Stats().ASNs)
	for info := range ix.ASNs() {
		entries = append(entries, NewASNEntry(info))
	}

	if acceptedType(r) == render.ContentTypePlainText {
		var b strings.Builder
		for _, entry := range entries {
			b.WriteString(entry.String())
			b.WriteByte('\n')
		}
		render.PlainText(w, r, b.String())
		return
	}
	render.JSON(w, r, entries)
}

func (s *server) listSubnets(w http.ResponseWriter, r *http.Request) {
	n, err := ParseASN(chi.URLParam(r, "asn"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid AS number")
		return
	}

	subnets, ok := s.store.Current().Subnets(n)
	if !ok {
		respondError(w, r, http.StatusNotFound, fmt.Sprintf("AS%d not found", n))
		return
	}

	resp := SubnetsResponse{ASNumber: n, Subnets: make([]string, 0, len(subnets))}
	for _, p := range subnets {
		resp.Subnets = append(resp.Subnets, p.String())
	}

	if acceptedType(r) == render.ContentTypePlainText {
		var b strings.Builder
		for _, subnet := range resp.Subnets {
			b.WriteString(subnet)
			b.WriteByte('\n')
		}
		render.PlainText(w, r, b.String())
		return
	}
	render.JSON(w, r, resp)
}

// ResolveIP resolves one raw address against a captured snapshot. An
// unparseable address answers announced=false echoing the input, not an
// error. The CLI shares this so its answers match the HTTP API exactly.
func ResolveIP(ix *asndb.Index, raw string) IPLookup {
	ip, err := netip.ParseAddr(raw)
	if err != nil {
		return IPLookup{IP: raw}
	}

	rec, ok := ix.Lookup(ip)
	if !ok {
		return IPLookup{IP: ip.String()}
	}

	return IPLookup{
		IP:          ip.String(),
		Announced:   true,
		FirstIP:     rec.First.String(),
		LastIP:      rec.Last.String(),
		ASNumber:    rec.ASN,
		CountryCode: rec.Country,
		Description: rec.Description,
	}
}

// NewASNEntry converts a directory entry into its wire form.
func NewASNEntry(info asndb.ASNInfo) ASNEntry {
	return ASNEntry{
		ASNumber:    info.ASN,
		CountryCode: info.Country,
		Description: info.Description,
		Ranges:      info.Ranges,
	}
}

func bulkInput(w http.ResponseWriter, r *http.Request) ([]string, error) {
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBulkBody)
		var req bulkRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return nil, err
		}
		return req.IPs, nil
	}

	raw := r.URL.Query().Get("ips")
	if raw == "" {
		return nil, errors.New("missing ips parameter")
	}
	return strings.Split(raw, ","), nil
}

// ParseASN reads an AS number such as "15169" or "AS15169".
func ParseASN(raw string) (uint32, error) {
	if len(raw) >= 2 && strings.EqualFold(raw[:2], "as") {
		raw = raw[2:]
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
