package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// EmptyChart renders a placeholder SVG for a view with no rows.
func EmptyChart(title string, width, height int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, emptyChartSVG,
			width, height, width, height, width/2, templ.EscapeString(title), width/2, height/2)
		return err
	})
}

const emptyChartSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">` +
	`<rect width="100%%" height="100%%" fill="#ffffff" stroke="#dddddd"/>` +
	`<text x="%d" y="30" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>` +
	`<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888888">No data</text>` +
	`</svg>`
