package tpladapter

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/jgivc/hypersite/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var rowRegexp = regexp.MustCompile(`<tr id="([a-z]+)-installer"`)

func render(t *testing.T, os entity.DetectedOS) string {
	t.Helper()

	a, err := NewTplAdapter(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	pc := NewPageContext(&entity.Release{TagName: "v3.4.1", HTMLURL: "https://github.com/vercel/hyper/releases/tag/v3.4.1"}, os)
	pc.BuildID = "build-1"
	pc.Sections = []SectionHTML{
		{ID: "extensions-api", Title: "Extensions API", HTML: "<p>Extensions are universal Node.js modules</p>"},
	}

	out, err := a.Render(pc)
	require.NoError(t, err)

	return out
}

func TestRenderInstallationTable(t *testing.T) {
	out := render(t, entity.OSUnknown)

	var rows []string
	for _, m := range rowRegexp.FindAllStringSubmatch(out, -1) {
		rows = append(rows, m[1])
	}
	require.Equal(t, []string{"mac", "windows", "ubuntu", "fedora", "linux"}, rows)

	require.Equal(t, 4, strings.Count(out, `class="download download-arm64"`))
	require.NotContains(t, out, `/download/win_arm64`)
	for _, path := range []string{"mac", "mac_arm64", "win", "deb", "deb_arm64", "rpm", "rpm_arm64", "AppImage", "AppImage_arm64"} {
		require.Contains(t, out, `href="/download/`+path+`"`)
	}

	require.Contains(t, out, "<b>macOS</b> (.app)")
	require.Contains(t, out, "<b>Windows</b> (.exe)")
	require.Contains(t, out, "<b>Debian</b> (.deb)")
	require.Contains(t, out, "<b>Fedora</b> (.rpm)")
	require.Contains(t, out, "<b>More Linux distros</b> (.AppImage)")
}

func TestRenderVersionAndAnchors(t *testing.T) {
	out := render(t, entity.OSUnknown)

	require.Contains(t, out, "latest version: v3.4.1")
	require.Contains(t, out, `id="content"`)
	require.Contains(t, out, `<h2 class="installation-title" id="installation"><a href="#installation">Installation</a></h2>`)
	require.Contains(t, out, `<h2 id="extensions-api"><a href="#extensions-api">Extensions API</a></h2>`)
	require.Contains(t, out, `<a class="hero-other" href="#installation">View other platforms</a>`)
	require.Contains(t, out, "<p>Extensions are universal Node.js modules</p>")
	require.Contains(t, out, `data-build="build-1"`)
	require.Contains(t, out, `data-os="unknown"`)
}

func TestRenderPrimaryDownload(t *testing.T) {
	testCases := []struct {
		name      string
		os        entity.DetectedOS
		contains  []string
		absent    []string
		currentID string
	}{
		{
			name: "mac",
			os:   entity.OSMac,
			contains: []string{
				`<a class="download-button fixed-width" href="/download/mac">Download for macOS</a>`,
				`<a class="download-button-secondary" href="/download/mac_arm64">Apple silicon</a>`,
			},
			currentID: "mac",
		},
		{
			name: "windows",
			os:   entity.OSWindows,
			contains: []string{
				`<a class="download-button fixed-width" href="/download/win">Download for Windows</a>`,
			},
			absent:    []string{`download-button-secondary`},
			currentID: "windows",
		},
		{
			name: "linux",
			os:   entity.OSLinux,
			contains: []string{
				`<a class="download-button fixed-width" href="/download/AppImage">Download for Linux</a>`,
				`<a class="download-button-secondary" href="/download/AppImage_arm64">arm64</a>`,
			},
			currentID: "linux",
		},
		{
			name: "unknown",
			os:   entity.OSUnknown,
			contains: []string{
				`<a class="download-button fixed-width" href="#installation">Download</a>`,
			},
			absent: []string{`class="current"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, tc.os)

			for _, s := range tc.contains {
				require.Contains(t, out, s)
			}

			for _, s := range tc.absent {
				require.NotContains(t, out, s)
			}

			if tc.currentID != "" {
				require.Contains(t, out, `<tr id="`+tc.currentID+`-installer" class="current">`)
				require.Equal(t, 1, strings.Count(out, `class="current"`))
			}
		})
	}
}

func TestRenderWithoutRelease(t *testing.T) {
	a, err := NewTplAdapter(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	_, err = a.Render(NewPageContext(nil, entity.OSMac))
	require.Error(t, err)
}

func TestCustomTemplate(t *testing.T) {
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/custom.html", []byte(`v={{ .Release.TagName }} rows={{ len .Installers }}`), 0644))

	a, err := NewTplAdapter(mfs, "/custom.html")
	require.NoError(t, err)

	out, err := a.Render(NewPageContext(&entity.Release{TagName: "v1.0.0"}, entity.OSLinux))
	require.NoError(t, err)
	require.Equal(t, "v=v1.0.0 rows=5", out)

	_, err = NewTplAdapter(mfs, "/missing.html")
	require.Error(t, err)
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"hero.css", "content.css", "installation.css"} {
		_, err := fs.Stat(Static(), name)
		require.NoError(t, err, name)
	}
}
