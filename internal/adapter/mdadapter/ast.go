package mdadapter

import (
	"github.com/jgivc/hypersite/internal/entity"
	"github.com/yuin/goldmark/ast"
)

var (
	KindPathDirective = ast.NewNodeKind("PathDirective")
	KindPathsTable    = ast.NewNodeKind("PathsTable")
)

// PathDirective is an inline reference to a file in the configuration directory.
type PathDirective struct {
	ast.BaseInline
	Suffix string
	Anchor string // links to #Anchor-location when set
	Table  bool
	OS     entity.DetectedOS
}

func (n *PathDirective) Kind() ast.NodeKind {
	return KindPathDirective
}

func (n *PathDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Suffix": n.Suffix,
		"Anchor": n.Anchor,
		"OS":     n.OS.String(),
	}, nil)
}

// PathsTable lists the location of Suffix for every supported platform.
type PathsTable struct {
	ast.BaseBlock
	Suffix string
	Anchor string
	OS     entity.DetectedOS
}

func (n *PathsTable) Kind() ast.NodeKind {
	return KindPathsTable
}

func (n *PathsTable) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Suffix": n.Suffix,
		"Anchor": n.Anchor,
	}, nil)
}
