package mdadapter

import (
	"bytes"
	"testing"

	"github.com/jgivc/hypersite/internal/entity"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var source = `# Configuration

Edit [[path:.hyper.js|config]] and restart.
Plugins live in [[path:.hyper_plugins]] too.

[[paths:.hyper.js|config]]

Not a directive: [[other:thing]] and [link](#here).
`

func convert(t *testing.T, src string, os entity.DetectedOS) string {
	t.Helper()

	md := goldmark.New(
		goldmark.WithExtensions(
			NewPathsExtension(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	pc := parser.NewContext()
	pc.Set(OSKey, os)

	var buf bytes.Buffer
	err := md.Convert([]byte(src), &buf, parser.WithContext(pc))
	require.NoError(t, err)

	return buf.String()
}

func TestPathDirective(t *testing.T) {
	testCases := []struct {
		name    string
		os      entity.DetectedOS
		linked  string
		plain   string
		current string
	}{
		{
			name:    "mac",
			os:      entity.OSMac,
			linked:  `<a href="#config-location"><code>~/Library/Application Support/Hyper/.hyper.js</code></a>`,
			plain:   `<code>~/Library/Application Support/Hyper/.hyper_plugins</code>`,
			current: `<tr class="current"><td>macOS</td>`,
		},
		{
			name:    "windows",
			os:      entity.OSWindows,
			linked:  `<a href="#config-location"><code>$Env:AppData/Hyper/.hyper.js</code></a>`,
			plain:   `<code>$Env:AppData/Hyper/.hyper_plugins</code>`,
			current: `<tr class="current"><td>Windows</td>`,
		},
		{
			name:    "linux",
			os:      entity.OSLinux,
			linked:  `<a href="#config-location"><code>~/.config/Hyper/.hyper.js</code></a>`,
			plain:   `<code>~/.config/Hyper/.hyper_plugins</code>`,
			current: `<tr class="current"><td>Linux</td>`,
		},
		{
			name:   "unknown",
			os:     entity.OSUnknown,
			linked: `<a href="#config-location"><code>.hyper.js</code></a>`,
			plain:  `<code>.hyper_plugins</code>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := convert(t, source, tc.os)

			require.Contains(t, out, tc.linked)
			require.Contains(t, out, tc.plain)
			require.Contains(t, out, `<div class="table" id="config-location">`)
			require.Contains(t, out, `<table id="config-paths-table">`)
			require.Contains(t, out, `<td>Linux</td><td><code>~/.config/Hyper/.hyper.js</code></td>`)
			require.Contains(t, out, `[[other:thing]]`)
			require.Contains(t, out, `<a href="#here">link</a>`)
			require.NotContains(t, out, `<p><div`)

			if tc.current != "" {
				require.Contains(t, out, tc.current)
				require.Equal(t, 1, bytes.Count([]byte(out), []byte(`class="current"`)))
			} else {
				require.NotContains(t, out, `class="current"`)
			}
		})
	}
}

func TestPathDirectiveWithoutOS(t *testing.T) {
	md := goldmark.New(goldmark.WithExtensions(NewPathsExtension()))

	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte("see [[path:.hyper.js]]\n"), &buf))
	require.Equal(t, "<p>see <code>.hyper.js</code></p>\n", buf.String())
}

func TestInlinePathsTable(t *testing.T) {
	out := convert(t, "inline [[paths:.hyper.js|config]] table\n", entity.OSLinux)

	require.Equal(t, "<p>inline <a href=\"#config-location\"><code>~/.config/Hyper/.hyper.js</code></a> table</p>\n", out)
}

func TestDirectiveNodes(t *testing.T) {
	md := goldmark.New(goldmark.WithExtensions(NewPathsExtension()))

	pc := parser.NewContext()
	pc.Set(OSKey, entity.OSWindows)

	src := []byte("Edit [[path:.hyper.js|config]] now.\n\n[[paths:.hyper_plugins|plugins]]\n")
	doc := md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var (
		directives []*PathDirective
		tables     []*PathsTable
	)

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *PathDirective:
			directives = append(directives, v)
		case *PathsTable:
			tables = append(tables, v)
		}

		return ast.WalkContinue, nil
	})
	require.NoError(t, err)

	require.Len(t, directives, 1)
	require.Equal(t, ".hyper.js", directives[0].Suffix)
	require.Equal(t, "config", directives[0].Anchor)
	require.Equal(t, ast.TypeInline, directives[0].Type())
	require.Equal(t, entity.OSWindows, directives[0].OS)

	require.Len(t, tables, 1)
	require.Equal(t, ".hyper_plugins", tables[0].Suffix)
	require.Equal(t, "plugins", tables[0].Anchor)
	require.Equal(t, ast.TypeBlock, tables[0].Type())
	require.Equal(t, KindPathsTable, tables[0].Kind())
}
