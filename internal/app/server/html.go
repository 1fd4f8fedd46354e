package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/render"
)

//go:embed templates/lookup.html
var lookupPageHTML string

var lookupPage = template.Must(template.New("lookup").Parse(lookupPageHTML))

func renderLookupPage(w http.ResponseWriter, r *http.Request, resp IPLookup) {
	var buf bytes.Buffer
	if err := lookupPage.Execute(&buf, resp); err != nil {
		log.Error("failed to render lookup page", "error", err)
		respondError(w, r, http.StatusInternalServerError, "rendering failed")
		return
	}
	render.HTML(w, r, buf.String())
}
