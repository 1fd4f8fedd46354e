package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// acceptedType picks the rendition from the first recognized Accept field.
// Requests that don't ask for anything specific get HTML, the behavior
// browsers and humans expect from this service.
func acceptedType(r *http.Request) render.ContentType {
	for _, field := range strings.Split(r.Header.Get("Accept"), ",") {
		switch render.GetContentType(strings.TrimSpace(field)) {
		case render.ContentTypeJSON:
			return render.ContentTypeJSON
		case render.ContentTypePlainText:
			return render.ContentTypePlainText
		case render.ContentTypeHTML:
			return render.ContentTypeHTML
		}
	}
	return render.ContentTypeHTML
}

// respondError always answers JSON; error payloads are for API clients.
func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

func (s *server) renderLookup(w http.ResponseWriter, r *http.Request, resp IPLookup) {
	switch acceptedType(r) {
	case render.ContentTypeJSON:
		render.JSON(w, r, resp)
	case render.ContentTypePlainText:
		render.PlainText(w, r, resp.String()+"\n")
	default:
		renderLookupPage(w, r, resp)
	}
}

// String is the plain-text rendition, one answer per line.
func (resp IPLookup) String() string {
	if !resp.Announced {
		return fmt.Sprintf("%s\tNot announced", resp.IP)
	}
	return fmt.Sprintf("%s\tAS%d\t%s-%s\t%s\t%s",
		resp.IP, resp.ASNumber, resp.FirstIP, resp.LastIP, resp.CountryCode, resp.Description)
}

// String is the plain-text directory line.
func (entry ASNEntry) String() string {
	return fmt.Sprintf("AS%d\t%s\t%s", entry.ASNumber, entry.CountryCode, entry.Description)
}
