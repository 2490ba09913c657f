package builder

import (
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jgivc/hypersite/internal/adapter/fsadapter"
	"github.com/jgivc/hypersite/internal/adapter/tpladapter"
	"github.com/jgivc/hypersite/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSectionSource struct {
	mock.Mock
}

func (m *MockSectionSource) Sections() ([]*entity.Section, error) {
	args := m.Called()

	var s []*entity.Section
	if args[0] != nil {
		if ss, ok := args.Get(0).([]*entity.Section); ok {
			s = ss
		}
	}

	return s, args.Error(1)
}

func (m *MockSectionSource) Render(section *entity.Section, os entity.DetectedOS) (template.HTML, error) {
	args := m.Called(section, os)

	return args.Get(0).(template.HTML), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestBuilder(t *testing.T, sections SectionSource) *Builder {
	t.Helper()

	tpl, err := tpladapter.NewTplAdapter(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	return NewBuilder(sections, tpl, "https://hyper.is", 2, newTestLogger())
}

func TestBuild(t *testing.T) {
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, filepath.Join(fsadapter.SectionsDir, "config.md"), []byte(`---
id: configuration
title: Configuration
---

Config lives in [[path:.hyper.js|config]].
`), 0644))

	b := newTestBuilder(t, fsadapter.NewFSAdapter(mfs, newTestLogger()))

	gen, err := b.Build(context.Background(), &entity.Release{TagName: "v3.4.1"})
	require.NoError(t, err)
	require.NotEmpty(t, gen.BuildID)
	require.Len(t, gen.Pages, len(entity.AllOS))

	paths := map[entity.DetectedOS]string{
		entity.OSMac:     "~/Library/Application Support/Hyper/.hyper.js",
		entity.OSWindows: "$Env:AppData/Hyper/.hyper.js",
		entity.OSLinux:   "~/.config/Hyper/.hyper.js",
		entity.OSUnknown: "<code>.hyper.js</code>",
	}

	hashes := map[string]struct{}{}
	for _, os := range entity.AllOS {
		page := gen.Pages[os]
		require.NotNil(t, page, os.String())
		require.Equal(t, os, page.OS)
		require.Equal(t, gen.BuildID, page.BuildID)
		require.Equal(t, "v3.4.1", page.Version)
		require.Equal(t, gen.GeneratedAt, page.GeneratedAt)
		require.Contains(t, page.Content, "latest version: v3.4.1")
		require.Contains(t, page.Content, `<h2 id="configuration"><a href="#configuration">Configuration</a></h2>`)
		require.Contains(t, page.Content, paths[os])
		require.Len(t, page.Hash, 40)

		hashes[page.Hash] = struct{}{}
	}

	require.Len(t, hashes, len(entity.AllOS))
}

func TestBuildIsRepeatable(t *testing.T) {
	b := newTestBuilder(t, fsadapter.NewFSAdapter(fsadapter.DefaultFS(), newTestLogger()))
	release := &entity.Release{TagName: "v3.4.1"}

	first, err := b.Build(context.Background(), release)
	require.NoError(t, err)

	second, err := b.Build(context.Background(), release)
	require.NoError(t, err)

	require.NotEqual(t, first.BuildID, second.BuildID)

	strip := func(s, id string) string { return strings.ReplaceAll(s, id, "") }
	require.Equal(t,
		strip(first.Pages[entity.OSMac].Content, first.BuildID),
		strip(second.Pages[entity.OSMac].Content, second.BuildID),
	)
}

func TestBuildErrors(t *testing.T) {
	t.Run("no release", func(t *testing.T) {
		b := newTestBuilder(t, new(MockSectionSource))

		_, err := b.Build(context.Background(), nil)
		require.Error(t, err)

		_, err = b.Build(context.Background(), &entity.Release{})
		require.Error(t, err)
	})

	t.Run("sections error", func(t *testing.T) {
		m := new(MockSectionSource)
		m.On("Sections").Return(nil, errors.New("boom"))

		b := newTestBuilder(t, m)

		_, err := b.Build(context.Background(), &entity.Release{TagName: "v1.0.0"})
		require.Error(t, err)
	})

	t.Run("render error fails generation", func(t *testing.T) {
		section := &entity.Section{ID: "broken", Title: "Broken"}

		m := new(MockSectionSource)
		m.On("Sections").Return([]*entity.Section{section}, nil)
		m.On("Render", section, entity.OSWindows).Return(template.HTML(""), errors.New("boom"))
		m.On("Render", section, mock.Anything).Return(template.HTML("<p>ok</p>"), nil)

		b := newTestBuilder(t, m)

		gen, err := b.Build(context.Background(), &entity.Release{TagName: "v1.0.0"})
		require.Error(t, err)
		require.Nil(t, gen)
	})
}
