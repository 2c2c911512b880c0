package tui

import (
	_ "embed"
	"io"
)

//go:embed helptext/usage.txt
var usageText string

func usage(w io.Writer) {
	io.WriteString(w, usageText)
}
