package media

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/gallr/internal/config"
)

func TestDetectType(t *testing.T) {
	detector, err := NewTypeDetector()
	require.NoError(t, err)

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{"JPEG image", "http://example.com/photo.jpg", TypeImage},
		{"JPEG image alt", "http://example.com/photo.jpeg", TypeImage},
		{"PNG image", "http://example.com/image.png", TypeImage},
		{"GIF image", "http://example.com/animation.gif", TypeImage},
		{"WebP image", "http://example.com/photo.webp", TypeImage},
		{"with query", "http://example.com/photo.jpg?w=640", TypeImage},
		{"with fragment", "http://example.com/photo.png#top", TypeImage},
		{"Pixabay CDN without extension", "https://pixabay.com/get/abc123", TypeImage},
		{"Flickr static", "https://live.staticflickr.com/65535/123_abc", TypeImage},
		{"mixed case", "http://example.com/Photo.JpEg", TypeImage},

		{"HTML page", "http://example.com/page.html", TypeUnknown},
		{"no extension", "http://example.com/resource", TypeUnknown},
		{"dot in host only", "http://images.example.com/resource", TypeUnknown},
		{"Pixabay page", "https://pixabay.com/photos/cat-123/", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.DetectType(tt.url))
		})
	}
}

func TestTypeDetectorDefaultOpener(t *testing.T) {
	detector, err := NewTypeDetector()
	require.NoError(t, err)
	assert.NotEmpty(t, detector.DefaultOpener())

	empty := &TypeDetector{table: &TypeTable{}}
	assert.Equal(t, "open", empty.DefaultOpener())
}

func TestNewLauncher(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Media.Darwin.Image = []string{"nonexistent-viewer"}
	cfg.Media.Linux.Image = []string{"nonexistent-viewer"}
	cfg.Media.Windows.Image = []string{"nonexistent-viewer"}
	cfg.Media.DefaultOpener = "fallback-opener"

	launcher := NewLauncher(cfg)
	require.NotNil(t, launcher)
	assert.Equal(t, "fallback-opener", launcher.Viewer(), "missing viewers fall back to the default opener")
}

func TestNewLauncherFindsInstalledViewer(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Media.Darwin.Image = []string{"nonexistent-viewer", "sh"}
	cfg.Media.Linux.Image = []string{"nonexistent-viewer", "sh"}
	cfg.Media.Windows.Image = []string{"nonexistent-viewer", "sh"}

	launcher := NewLauncher(cfg)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	assert.Equal(t, "sh", launcher.Viewer())
}

func TestLauncherOpen(t *testing.T) {
	var started *exec.Cmd
	launcher := &Launcher{
		imageViewer:   "viewer",
		defaultOpener: "opener",
		registry:      &ViewerRegistry{viewers: map[string]ViewerDefinition{}},
		detector:      &TypeDetector{table: &TypeTable{Image: ImageRule{Extensions: []string{"jpg"}}}},
		start: func(cmd *exec.Cmd) error {
			started = cmd
			return nil
		},
	}

	require.NoError(t, launcher.Open("https://cdn/large.jpg"))
	assert.Equal(t, []string{"viewer", "https://cdn/large.jpg"}, started.Args)

	require.NoError(t, launcher.Open("https://example.com/page"))
	assert.Equal(t, []string{"opener", "https://example.com/page"}, started.Args)
}

func TestLauncherOpenStartFailure(t *testing.T) {
	launcher := &Launcher{
		imageViewer: "viewer",
		registry:    &ViewerRegistry{viewers: map[string]ViewerDefinition{}},
		detector:    &TypeDetector{table: &TypeTable{Image: ImageRule{Extensions: []string{"jpg"}}}},
		start: func(*exec.Cmd) error {
			return errors.New("exec: not found")
		},
	}

	err := launcher.Open("https://cdn/large.jpg")
	assert.ErrorContains(t, err, "failed to start viewer")
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "image", TypeImage.String())
	assert.Equal(t, "unknown", TypeUnknown.String())
}
