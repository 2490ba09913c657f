package tpladapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"

	"github.com/jgivc/hypersite/internal/entity"
	"github.com/jgivc/hypersite/internal/platform"
	"github.com/spf13/afero"
)

const (
	DownloadPrefix = "/download/"
)

var (
	//go:embed templates/page.html
	defaultTemplate string

	//go:embed static
	staticContent embed.FS

	primaryNames = map[entity.DetectedOS][2]string{
		entity.OSMac:     {"macOS", "Apple silicon"},
		entity.OSWindows: {"Windows", ""},
		entity.OSLinux:   {"Linux", "arm64"},
	}
)

type InstallerRow struct {
	entity.Installer
	URL      string
	ARM64URL string
	Current  bool
}

type PrimaryDownload struct {
	Name      string
	URL       string
	ARM64Name string
	ARM64URL  string
}

type SectionHTML struct {
	ID    string
	Title string
	HTML  template.HTML
}

type PageContext struct {
	URL        string
	OS         entity.DetectedOS
	BuildID    string
	Release    *entity.Release
	Primary    *PrimaryDownload
	Installers []InstallerRow
	Sections   []SectionHTML
}

// Static returns the stylesheets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticContent, "static")
	if err != nil {
		panic(err)
	}

	return sub
}

type tplAdapter struct {
	tpl *template.Template
}

// NewTplAdapter parses the page layout. An empty templateFileName selects
// the bundled layout.
func NewTplAdapter(fs afero.Fs, templateFileName string) (*tplAdapter, error) {
	src := defaultTemplate
	if templateFileName != "" {
		data, err := afero.ReadFile(fs, templateFileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read template: %w", err)
		}

		src = string(data)
	}

	tpl, err := template.New("page").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}

	return &tplAdapter{tpl: tpl}, nil
}

// NewPageContext fills the installation table and hero download for os.
func NewPageContext(release *entity.Release, os entity.DetectedOS) *PageContext {
	installers := platform.Installers()
	rows := make([]InstallerRow, 0, len(installers))

	for _, inst := range installers {
		row := InstallerRow{
			Installer: inst,
			URL:       DownloadURL(inst.Path),
			Current:   inst.OS == string(os),
		}

		if inst.HasARM64() {
			row.ARM64URL = DownloadURL(inst.ARM64Path)
		}

		rows = append(rows, row)
	}

	pc := &PageContext{
		OS:         os,
		Release:    release,
		Installers: rows,
	}

	if inst, ok := platform.Primary(os); ok {
		names := primaryNames[os]
		pc.Primary = &PrimaryDownload{
			Name: names[0],
			URL:  DownloadURL(inst.Path),
		}

		if inst.HasARM64() {
			pc.Primary.ARM64Name = names[1]
			pc.Primary.ARM64URL = DownloadURL(inst.ARM64Path)
		}
	}

	return pc
}

func DownloadURL(path string) string {
	return DownloadPrefix + url.PathEscape(path)
}

func (a *tplAdapter) Render(pc *PageContext) (string, error) {
	if pc.Release == nil {
		return "", fmt.Errorf("cannot render page without release")
	}

	buf := bytes.Buffer{}
	if err := a.tpl.Execute(&buf, pc); err != nil {
		return "", fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.String(), nil
}
