package templates

import (
	"embed"
	"io/fs"
)

// reportTemplates embeds the markdown report templates.
// The structure is:
//   - reports/<report>.md (text/template source)
//
//go:embed reports
var reportTemplates embed.FS

// ReportsFS returns the embedded filesystem containing report templates.
func ReportsFS() fs.FS {
	return reportTemplates
}

// Report returns the template source of the named report.
func Report(name string) (string, error) {
	data, err := fs.ReadFile(reportTemplates, "reports/"+name+".md")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
