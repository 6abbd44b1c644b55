package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the skury banner, coloured when out supports it.
func PrintBanner(out io.Writer, version string) {
	o := termenv.NewOutput(out)
	lines := []struct{ text, color string }{
		{"      _                      ", "#38bdf8"},
		{"  ___| | ___   _ _ __ _   _  ", "#22d3ee"},
		{" / __| |/ / | | | '__| | | | ", "#2dd4bf"},
		{" \\__ \\   <| |_| | |  | |_| | ", "#34d399"},
		{" |___/_|\\_\\\\__,_|_|   \\__, | ", "#4ade80"},
		{"                      |___/  ", "#a3e635"},
	}

	fmt.Fprintln(out)
	for _, l := range lines {
		fmt.Fprintln(out, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintf(out, " %s\n\n", o.String("v"+version).Faint())
}
