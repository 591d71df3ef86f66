package pdf

import (
	"context"
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// WkhtmltopdfRenderer shells out to the wkhtmltopdf binary. The binary must
// be on PATH (or set via WKHTMLTOPDF_PATH).
type WkhtmltopdfRenderer struct{}

func NewWkhtmltopdfRenderer() (*WkhtmltopdfRenderer, error) {
	// Fails fast when the binary is missing instead of erroring on first use.
	if _, err := wkhtmltopdf.NewPDFGenerator(); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf unavailable: %w", err)
	}
	return &WkhtmltopdfRenderer{}, nil
}

func (r *WkhtmltopdfRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}
	pdfg.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(html)))
	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("pdf rendering failed: %w", err)
	}
	return pdfg.Bytes(), nil
}
