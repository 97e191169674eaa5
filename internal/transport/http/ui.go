package http

import (
	"embed"
	"net/http"
)

//go:embed index.html
var uiFS embed.FS

// UIHandler serves the embedded single page UI.
func UIHandler() http.Handler {
	return http.FileServer(http.FS(uiFS))
}
