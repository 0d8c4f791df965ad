package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
)

//go:embed openapi.json
var openAPIDocument []byte

const (
	docsTitle   = "Image to Prompt API Docs"
	docsSpecURL = "/v1/openapi.json"
	redocBundle = "https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"
)

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; padding: 0; }
      redoc { display: block; height: 100vh; }
    </style>
  </head>
  <body>
    <redoc spec-url="{{.SpecURL}}"></redoc>
    <script src="{{.Bundle}}"></script>
  </body>
</html>`))

// docsPage is rendered once; the inputs are constants.
var docsPage = renderDocs()

func renderDocs() []byte {
	var buf bytes.Buffer
	err := docsTemplate.Execute(&buf, struct {
		Title   string
		SpecURL string
		Bundle  string
	}{docsTitle, docsSpecURL, redocBundle})
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// OpenAPIJSON serves the embedded OpenAPI document.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

// OpenAPIDocs serves a Redoc page pointed at the OpenAPI document.
func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(docsPage)
}
