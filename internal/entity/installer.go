package entity

// DetectedOS is the visitor platform class used to pick the emphasized download.
type DetectedOS string

const (
	OSUnknown DetectedOS = ""
	OSMac     DetectedOS = "mac"
	OSWindows DetectedOS = "windows"
	OSLinux   DetectedOS = "linux"
)

// AllOS lists every variant a page is generated for.
var AllOS = []DetectedOS{OSMac, OSWindows, OSLinux, OSUnknown}

func (o DetectedOS) String() string {
	if o == OSUnknown {
		return "unknown"
	}

	return string(o)
}

// Installer describes one published installer format.
type Installer struct {
	OS        string // Platform key, also used as row id
	Label     string // Bold part of the row title
	Format    string // Package extension shown next to the label
	Path      string // Download path fragment
	ARM64Path string // Optional arm64 download path fragment
}

func (i Installer) HasARM64() bool {
	return i.ARM64Path != ""
}
