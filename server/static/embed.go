// Package static provides the embedded single-page viewer.
// The embed directive bundles the page into the binary so the service
// ships as one file.
package static

import "embed"

//go:embed viewer.html
var staticFS embed.FS

// ViewerHTML returns the embedded viewer page.
func ViewerHTML() ([]byte, error) {
	return staticFS.ReadFile("viewer.html")
}
