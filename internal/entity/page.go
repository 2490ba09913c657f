package entity

import "time"

// Page is one rendered homepage variant.
type Page struct {
	OS          DetectedOS
	Content     string
	Hash        string // ETag
	BuildID     string
	Version     string
	GeneratedAt time.Time
}

// Generation holds everything produced by one regeneration.
type Generation struct {
	BuildID     string
	Release     *Release
	Pages       map[DetectedOS]*Page
	GeneratedAt time.Time
}

// Section is a documentation block of the homepage.
type Section struct {
	ID     string
	Title  string
	Order  int
	Source []byte
}
