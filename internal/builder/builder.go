package builder

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/hypersite/internal/adapter/tpladapter"
	"github.com/jgivc/hypersite/internal/entity"
	"github.com/jgivc/hypersite/internal/util"
	"golang.org/x/sync/errgroup"
)

type SectionSource interface {
	Sections() ([]*entity.Section, error)
	Render(section *entity.Section, os entity.DetectedOS) (template.HTML, error)
}

type PageRenderer interface {
	Render(pc *tpladapter.PageContext) (string, error)
}

type Builder struct {
	sections SectionSource
	tpl      PageRenderer
	siteURL  string
	workers  int
	now      func() time.Time
	log      *slog.Logger
}

func NewBuilder(sections SectionSource, tpl PageRenderer, siteURL string, workers int, log *slog.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}

	return &Builder{
		sections: sections,
		tpl:      tpl,
		siteURL:  siteURL,
		workers:  workers,
		now:      time.Now,
		log:      log.With(slog.String("item", "Builder")),
	}
}

// Build renders every DetectedOS variant of the homepage for release.
// Any failed variant fails the whole generation.
func (b *Builder) Build(ctx context.Context, release *entity.Release) (*entity.Generation, error) {
	if release == nil || release.TagName == "" {
		return nil, fmt.Errorf("cannot build pages without release version")
	}

	sections, err := b.sections.Sections()
	if err != nil {
		return nil, fmt.Errorf("cannot load sections: %w", err)
	}

	gen := &entity.Generation{
		BuildID:     uuid.NewString(),
		Release:     release,
		Pages:       make(map[entity.DetectedOS]*entity.Page, len(entity.AllOS)),
		GeneratedAt: b.now(),
	}

	log := b.log.With(slog.String("build_id", gen.BuildID), slog.String("version", release.TagName))
	log.Info("Build pages", slog.Int("sections", len(sections)))

	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)

	for _, os := range entity.AllOS {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			page, err := b.buildPage(gen, sections, os)
			if err != nil {
				log.Error("Cannot build page", slog.String("os", os.String()), slog.Any("error", err))

				return fmt.Errorf("cannot build %s page: %w", os, err)
			}

			mu.Lock()
			gen.Pages[os] = page
			mu.Unlock()

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	log.Info("Pages built", slog.Int("count", len(gen.Pages)))

	return gen, nil
}

func (b *Builder) buildPage(gen *entity.Generation, sections []*entity.Section, os entity.DetectedOS) (*entity.Page, error) {
	pc := tpladapter.NewPageContext(gen.Release, os)
	pc.URL = b.siteURL
	pc.BuildID = gen.BuildID

	for _, section := range sections {
		html, err := b.sections.Render(section, os)
		if err != nil {
			return nil, err
		}

		pc.Sections = append(pc.Sections, tpladapter.SectionHTML{
			ID:    section.ID,
			Title: section.Title,
			HTML:  html,
		})
	}

	content, err := b.tpl.Render(pc)
	if err != nil {
		return nil, err
	}

	return &entity.Page{
		OS:          os,
		Content:     content,
		Hash:        util.GetHash(content),
		BuildID:     gen.BuildID,
		Version:     gen.Release.TagName,
		GeneratedAt: gen.GeneratedAt,
	}, nil
}
