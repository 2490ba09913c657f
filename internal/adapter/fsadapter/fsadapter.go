package fsadapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jgivc/hypersite/internal/adapter/mdadapter"
	"github.com/jgivc/hypersite/internal/entity"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	SectionsDir = "sections"

	maxSections   = 50
	sectionSuffix = ".md"
)

//go:embed content
var defaultContent embed.FS

type Frontmatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

// DefaultFS returns the documentation bundled into the binary.
func DefaultFS() afero.Fs {
	sub, err := fs.Sub(defaultContent, "content")
	if err != nil {
		panic(err)
	}

	return afero.FromIOFS{FS: sub}
}

// DirFS returns a read only view of a content directory on disk.
func DirFS(dir string) afero.Fs {
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

type fsAdapter struct {
	fs  afero.Fs
	md  goldmark.Markdown
	log *slog.Logger
}

func NewFSAdapter(fs afero.Fs, log *slog.Logger) *fsAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
			mdadapter.NewPathsExtension(),
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	return &fsAdapter{
		fs:  fs,
		md:  md,
		log: log.With(slog.String("item", "FSAdapter")),
	}
}

// Sections reads every markdown file of SectionsDir ordered by frontmatter
// order, then by file name.
func (a *fsAdapter) Sections() ([]*entity.Section, error) {
	entries, err := afero.ReadDir(a.fs, SectionsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read sections dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var sections []*entity.Section
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sectionSuffix) {
			continue
		}

		section, err := a.readSection(filepath.Join(SectionsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("cannot read section %s: %w", entry.Name(), err)
		}

		a.log.Debug("Found section", slog.String("id", section.ID), slog.String("file", entry.Name()))
		sections = append(sections, section)

		if len(sections) >= maxSections {
			break
		}
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	return sections, nil
}

func (a *fsAdapter) readSection(fileName string) (*entity.Section, error) {
	src, err := afero.ReadFile(a.fs, fileName)
	if err != nil {
		return nil, err
	}

	pc := parser.NewContext()
	a.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var fm Frontmatter
	if data := frontmatter.Get(pc); data != nil {
		if err := data.Decode(&fm); err != nil {
			return nil, fmt.Errorf("cannot decode frontmatter: %w", err)
		}
	}

	section := &entity.Section{
		ID:     fm.ID,
		Title:  fm.Title,
		Order:  fm.Order,
		Source: src,
	}

	if section.ID == "" {
		section.ID = strings.TrimSuffix(filepath.Base(fileName), sectionSuffix)
	}

	if section.Title == "" {
		section.Title = section.ID
	}

	return section, nil
}

// Render converts a section body to HTML for the given platform.
func (a *fsAdapter) Render(section *entity.Section, os entity.DetectedOS) (template.HTML, error) {
	pc := parser.NewContext()
	pc.Set(mdadapter.OSKey, os)

	var buf bytes.Buffer
	if err := a.md.Convert(section.Source, &buf, parser.WithContext(pc)); err != nil {
		return "", fmt.Errorf("cannot convert section %s: %w", section.ID, err)
	}

	return template.HTML(buf.String()), nil
}
