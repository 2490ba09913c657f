package mdadapter

import (
	"fmt"

	"github.com/jgivc/hypersite/internal/entity"
	"github.com/jgivc/hypersite/internal/platform"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var tableRows = []struct {
	os    entity.DetectedOS
	label string
}{
	{entity.OSMac, "macOS"},
	{entity.OSWindows, "Windows"},
	{entity.OSLinux, "Linux"},
}

type PathDirectiveRenderer struct{}

func NewPathDirectiveRenderer() renderer.NodeRenderer {
	return &PathDirectiveRenderer{}
}

func (r *PathDirectiveRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindPathDirective, r.renderPathDirective)
	reg.Register(KindPathsTable, r.renderPathsTable)
}

func (r *PathDirectiveRenderer) renderPathDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	directive, ok := n.(*PathDirective)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *PathDirective", n)
	}

	if directive.Anchor == "" {
		writeCode(w, platform.Path(directive.OS, directive.Suffix))

		return ast.WalkContinue, nil
	}

	w.WriteString(`<a href="#`)
	w.Write(util.EscapeHTML([]byte(directive.Anchor)))
	w.WriteString(`-location">`)
	writeCode(w, platform.Path(directive.OS, directive.Suffix))
	w.WriteString(`</a>`)

	return ast.WalkContinue, nil
}

func (r *PathDirectiveRenderer) renderPathsTable(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	table, ok := n.(*PathsTable)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *PathsTable", n)
	}

	typ := util.EscapeHTML([]byte(table.Anchor))

	w.WriteString(`<div class="table"`)
	if table.Anchor != "" {
		fmt.Fprintf(w, ` id="%s-location"`, typ)
	}
	w.WriteString(">\n<table")
	if table.Anchor != "" {
		fmt.Fprintf(w, ` id="%s-paths-table"`, typ)
	}
	w.WriteString(">\n<tbody>\n")

	for _, row := range tableRows {
		if row.os == table.OS {
			w.WriteString(`<tr class="current">`)
		} else {
			w.WriteString(`<tr>`)
		}
		fmt.Fprintf(w, "<td>%s</td><td>", row.label)
		writeCode(w, platform.Path(row.os, table.Suffix))
		w.WriteString("</td></tr>\n")
	}

	w.WriteString("</tbody>\n</table>\n</div>\n")

	return ast.WalkContinue, nil
}

func writeCode(w util.BufWriter, s string) {
	w.WriteString("<code>")
	w.Write(util.EscapeHTML([]byte(s)))
	w.WriteString("</code>")
}
