// Package web holds the embedded browser assets for the chat page.
package web

import "embed"

//go:embed static
var staticFS embed.FS

// IndexHTML returns the single-page chat UI.
func IndexHTML() ([]byte, error) {
	return staticFS.ReadFile("static/index.html")
}
