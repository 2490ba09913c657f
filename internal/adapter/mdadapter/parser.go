package mdadapter

import (
	"bytes"

	"github.com/jgivc/hypersite/internal/entity"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// OSKey holds the entity.DetectedOS the document is rendered for.
var OSKey = parser.NewContextKey()

var (
	startSeq  = []byte{'[', '['}
	endSeq    = []byte{']', ']'}
	typeSeq   = []byte{'|'}
	pathSeq   = []byte("path:")
	pathsSeq  = []byte("paths:")
	minLength = len(startSeq) + len(pathSeq) + 1 + len(endSeq)
)

/*
 * [[path:.hyper.js]]            - path for the current platform
 * [[path:.hyper.js|config]]     - same, linked to #config-location
 * [[paths:.hyper.js|config]]    - table of paths for every platform
 */
type PathDirectiveParser struct{}

func NewPathDirectiveParser() parser.InlineParser {
	return &PathDirectiveParser{}
}

func (s *PathDirectiveParser) Trigger() []byte {
	return startSeq[:1]
}

func (s *PathDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	b, _ := block.PeekLine()
	if len(b) < minLength || !bytes.HasPrefix(b, startSeq) {
		return nil
	}

	end := bytes.Index(b, endSeq)
	if end < 0 {
		return nil
	}

	line := bytes.TrimSpace(b[len(startSeq):end])

	node := &PathDirective{OS: currentOS(pc)}
	switch {
	case bytes.HasPrefix(line, pathsSeq):
		node.Table = true
		line = line[len(pathsSeq):]
	case bytes.HasPrefix(line, pathSeq):
		line = line[len(pathSeq):]
	default:
		return nil
	}

	if idx := bytes.Index(line, typeSeq); idx >= 0 {
		node.Anchor = string(bytes.TrimSpace(line[idx+1:]))
		line = line[:idx]
	}

	node.Suffix = string(bytes.TrimSpace(line))
	if node.Suffix == "" {
		return nil
	}

	block.Advance(end + len(endSeq))

	return node
}

func currentOS(pc parser.Context) entity.DetectedOS {
	if v, ok := pc.Get(OSKey).(entity.DetectedOS); ok {
		return v
	}

	return entity.OSUnknown
}

// pathsTableTransformer lifts a paragraph holding nothing but a table
// directive into a PathsTable block.
type pathsTableTransformer struct{}

func (t *pathsTableTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var paragraphs []*ast.Paragraph

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		p, ok := n.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}

		if d, ok := p.FirstChild().(*PathDirective); ok && d.Table && p.ChildCount() == 1 {
			paragraphs = append(paragraphs, p)
		}

		return ast.WalkSkipChildren, nil
	})

	for _, p := range paragraphs {
		d := p.FirstChild().(*PathDirective)
		p.Parent().ReplaceChild(p.Parent(), p, &PathsTable{
			Suffix: d.Suffix,
			Anchor: d.Anchor,
			OS:     d.OS,
		})
	}
}
