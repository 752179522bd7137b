// Package renderer turns finvault reports into markdown.
package renderer

import (
	"bytes"
	"io"
	"strings"

	"github.com/etnz/finvault"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// list joins names for a single table cell or line.
func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

// label returns the display name of a holding.
func label(h finvault.Holding) string {
	if h.Name == "" {
		return h.Symbol
	}
	return h.Symbol + " (" + h.Name + ")"
}
