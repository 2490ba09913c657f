package mdadapter

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type PathsExtension struct{}

func NewPathsExtension() goldmark.Extender {
	return &PathsExtension{}
}

func (e *PathsExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewPathDirectiveParser(), 199),
		),
		parser.WithASTTransformers(
			util.Prioritized(&pathsTableTransformer{}, 100),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewPathDirectiveRenderer(), 199),
		),
	)
}
