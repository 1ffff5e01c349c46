package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// printSummary renders the end-of-run report: what repository was
// configured, with which trust state, and whether this was a fresh
// install or an update-only pass.
func printSummary(w io.Writer, opts registerOptions, out *outcome) {
	trustState := "none (relaxed policy)"
	if out.key.HasKey() {
		trustState = out.key.Fingerprint
	}

	mode := "update only (already configured)"
	if out.fresh {
		mode = "fresh install"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Repository", opts.desc.Name},
		{"URL", opts.desc.URL},
		{"Signature policy", out.level.String()},
		{"Key trust", trustState},
		{"Mode", mode},
	})
	if out.backup != "" {
		t.AppendRow(table.Row{"Config backup", out.backup})
	}
	if out.verified {
		t.AppendRow(table.Row{"Packages visible", fmt.Sprintf("%d", out.packages)})
	}
	t.Render()
}
