package media

import (
	_ "embed"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

// ImageRule recognises image URLs by file extension or by host path.
type ImageRule struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

// TypeTable is the layout of media_types.toml.
type TypeTable struct {
	Image     ImageRule                 `toml:"image"`
	Platforms map[string]PlatformOpener `toml:"platforms"`
}

type PlatformOpener struct {
	DefaultOpener string `toml:"default_opener"`
}

// TypeDetector classifies result URLs.
type TypeDetector struct {
	table *TypeTable
}

func NewTypeDetector() (*TypeDetector, error) {
	var table TypeTable
	if err := toml.Unmarshal(mediaTypesTOML, &table); err != nil {
		return nil, err
	}
	return &TypeDetector{table: &table}, nil
}

// DetectType classifies url by extension first, then by known image host
// patterns.
func (d *TypeDetector) DetectType(url string) Type {
	lower := strings.ToLower(url)

	if ext := extension(lower); ext != "" && slices.Contains(d.table.Image.Extensions, ext) {
		return TypeImage
	}

	isURL := strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
	if isURL && slices.ContainsFunc(d.table.Image.URLPatterns, func(p string) bool {
		return strings.Contains(lower, p)
	}) {
		return TypeImage
	}
	return TypeUnknown
}

// extension returns the extension of the last path segment without the dot,
// ignoring query and fragment.
func extension(lower string) string {
	if i := strings.IndexAny(lower, "?#"); i != -1 {
		lower = lower[:i]
	}
	if i := strings.LastIndex(lower, "/"); i != -1 {
		lower = lower[i+1:]
	}
	idx := strings.LastIndex(lower, ".")
	if idx == -1 {
		return ""
	}
	return lower[idx+1:]
}

// DefaultOpener is the platform's generic URL handler.
func (d *TypeDetector) DefaultOpener() string {
	if p, ok := d.table.Platforms[runtime.GOOS]; ok {
		return p.DefaultOpener
	}
	if p, ok := d.table.Platforms["fallback"]; ok {
		return p.DefaultOpener
	}
	return "open"
}
