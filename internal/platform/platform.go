package platform

import (
	"strings"

	"github.com/jgivc/hypersite/internal/entity"
)

const (
	prefixMac     = "~/Library/Application Support/Hyper/"
	prefixWindows = "$Env:AppData/Hyper/"
	prefixLinux   = "~/.config/Hyper/"
)

var installers = []entity.Installer{
	{OS: "mac", Label: "macOS", Format: ".app", Path: "mac", ARM64Path: "mac_arm64"},
	{OS: "windows", Label: "Windows", Format: ".exe", Path: "win"},
	{OS: "ubuntu", Label: "Debian", Format: ".deb", Path: "deb", ARM64Path: "deb_arm64"},
	{OS: "fedora", Label: "Fedora", Format: ".rpm", Path: "rpm", ARM64Path: "rpm_arm64"},
	{OS: "linux", Label: "More Linux distros", Format: ".AppImage", Path: "AppImage", ARM64Path: "AppImage_arm64"},
}

// Installers returns a copy of the installer table in display order.
func Installers() []entity.Installer {
	out := make([]entity.Installer, len(installers))
	copy(out, installers)

	return out
}

// Primary returns the installer offered by the hero download button.
func Primary(os entity.DetectedOS) (entity.Installer, bool) {
	switch os {
	case entity.OSMac, entity.OSWindows, entity.OSLinux:
		for _, inst := range installers {
			if inst.OS == string(os) {
				return inst, true
			}
		}
	}

	return entity.Installer{}, false
}

// IsDownloadPath reports whether path is a published installer path.
func IsDownloadPath(path string) bool {
	if path == "" {
		return false
	}

	for _, inst := range installers {
		if inst.Path == path || inst.ARM64Path == path {
			return true
		}
	}

	return false
}

// DownloadPaths lists every standard and arm64 path.
func DownloadPaths() []string {
	paths := make([]string, 0, len(installers)*2)
	for _, inst := range installers {
		paths = append(paths, inst.Path)
		if inst.HasARM64() {
			paths = append(paths, inst.ARM64Path)
		}
	}

	return paths
}

// Prefix returns the configuration directory of os. Unknown values give "".
func Prefix(os entity.DetectedOS) string {
	switch os {
	case entity.OSMac:
		return prefixMac
	case entity.OSWindows:
		return prefixWindows
	case entity.OSLinux:
		return prefixLinux
	}

	return ""
}

// Path resolves a configuration file path for os. Unknown platforms get the
// bare path.
func Path(os entity.DetectedOS, path string) string {
	return Prefix(os) + path
}

// ParseOS maps an explicit platform name onto the closed DetectedOS set.
func ParseOS(s string) entity.DetectedOS {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "macos", "darwin", "osx":
		return entity.OSMac
	case "windows", "win":
		return entity.OSWindows
	case "linux":
		return entity.OSLinux
	}

	return entity.OSUnknown
}

// DetectOS classifies a User-Agent header. Mobile platforms are unknown.
func DetectOS(userAgent string) entity.DetectedOS {
	ua := strings.ToLower(userAgent)

	switch {
	case ua == "":
		return entity.OSUnknown
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "android"):
		return entity.OSUnknown
	case strings.Contains(ua, "windows"):
		return entity.OSWindows
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os x"):
		return entity.OSMac
	case strings.Contains(ua, "linux"), strings.Contains(ua, "x11"):
		return entity.OSLinux
	}

	return entity.OSUnknown
}
