package pdf

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"prepmate/internal/store"
)

//go:embed templates/prepsheet.html
var prepSheetFS embed.FS

var prepSheetTmpl = template.Must(template.ParseFS(prepSheetFS, "templates/prepsheet.html"))

// SheetData feeds the local prep-sheet template.
type SheetData struct {
	PatientInfo store.PatientInfo
	Summary     string
	Answers     []store.Answer
}

// RenderLocalSheet renders the built-in prep-sheet template. The wizard uses
// it for the PDF download path so the printed sheet has a stable layout even
// when the model's HTML is unusable.
func RenderLocalSheet(data SheetData) (string, error) {
	var b strings.Builder
	if err := prepSheetTmpl.ExecuteTemplate(&b, "prepsheet.html", data); err != nil {
		return "", fmt.Errorf("failed to render prep sheet template: %w", err)
	}
	return b.String(), nil
}
