package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the designbridge banner and the active mode to w.
func PrintBanner(w io.Writer, version, mode string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`     _           _             _          _     _`, "#38bdf8"},
		{`  __| | ___  ___(_) __ _ _ __ | |__  _ __(_) __| | __ _  ___`, "#22d3ee"},
		{` / _' |/ _ \/ __| |/ _' | '_ \| '_ \| '__| |/ _' |/ _' |/ _ \`, "#2dd4bf"},
		{`| (_| |  __/\__ \ | (_| | | | | |_) | |  | | (_| | (_| |  __/`, "#34d399"},
		{` \__,_|\___||___/_|\__, |_| |_|_.__/|_|  |_|\__,_|\__, |\___|`, "#4ade80"},
		{`                   |___/                          |___/`, "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	meta := termenv.String(fmt.Sprintf("  v%s · %s mode", version, mode)).Faint()
	fmt.Fprintln(w, meta)
	fmt.Fprintln(w)
}
