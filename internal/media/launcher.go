package media

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
)

type Type int

const (
	TypeImage Type = iota
	TypeUnknown
)

func (t Type) String() string {
	if t == TypeImage {
		return "image"
	}
	return "unknown"
}

// Launcher opens full-size images in an external viewer.
type Launcher struct {
	imageViewer   string
	defaultOpener string
	registry      *ViewerRegistry
	detector      *TypeDetector
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewViewerRegistry()
	if err != nil {
		debuglog.Warnf("media: %v", err)
		registry = &ViewerRegistry{viewers: make(map[string]ViewerDefinition)}
	}

	detector, err := NewTypeDetector()
	if err != nil {
		debuglog.Warnf("media: loading type table: %v", err)
		detector = &TypeDetector{table: &TypeTable{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.DefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
		detector:      detector,
		start:         startDetached,
	}

	if viewers := platformViewers(&cfg.Media); len(viewers) > 0 {
		l.imageViewer = registry.FirstInstalled(viewers)
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}

	return l
}

func platformViewers(cfg *config.MediaConfig) []string {
	switch runtime.GOOS {
	case "darwin":
		return cfg.Darwin.Image
	case "linux":
		return cfg.Linux.Image
	case "windows":
		return cfg.Windows.Image
	default:
		return cfg.Linux.Image
	}
}

// Viewer reports the program used for images.
func (l *Launcher) Viewer() string {
	return l.imageViewer
}

// Open shows url in the image viewer, or the default opener for anything
// that does not look like an image. It does not wait for the viewer.
func (l *Launcher) Open(url string) error {
	mediaType := l.detector.DetectType(url)

	viewer := l.defaultOpener
	if mediaType == TypeImage {
		viewer = l.imageViewer
	}
	if viewer == "" {
		viewer = l.detector.DefaultOpener()
	}
	if viewer == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.Command(viewer, mediaType, url)
	if err != nil {
		cmd = exec.Command(viewer, url)
	}

	debuglog.Infof("media: opening %s %s with %s", mediaType, url, viewer)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", viewer, err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
