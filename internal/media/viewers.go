package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition describes one external image viewer.
type ViewerDefinition struct {
	Description string      `toml:"description"`
	Platforms   []string    `toml:"platforms"`
	Image       *ViewerArgs `toml:"image,omitempty"`
}

// ViewerArgs are the arguments placed before the image URL. A platform
// specific list replaces Args on that platform.
type ViewerArgs struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

// ViewersFile is the layout of viewers.toml.
type ViewersFile struct {
	Viewers map[string]ViewerDefinition `toml:"viewers"`
}

// ViewerRegistry knows how to invoke each configured viewer.
type ViewerRegistry struct {
	viewers map[string]ViewerDefinition
}

// NewViewerRegistry loads the built-in definitions and merges the user's
// viewers.toml on top.
func NewViewerRegistry() (*ViewerRegistry, error) {
	var builtin ViewersFile
	if err := toml.Unmarshal(viewersTOML, &builtin); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}

	r := &ViewerRegistry{viewers: builtin.Viewers}
	if r.viewers == nil {
		r.viewers = make(map[string]ViewerDefinition)
	}
	r.loadUserConfig(userConfigPaths()...)
	return r, nil
}

func userConfigPaths() []string {
	paths := []string{"./viewers.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append([]string{filepath.Join(home, ".config", "gallr", "viewers.toml")}, paths...)
	}
	return paths
}

// loadUserConfig merges definitions from paths; later files win. Missing or
// malformed files are skipped.
func (r *ViewerRegistry) loadUserConfig(paths ...string) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var user ViewersFile
		if err := toml.Unmarshal(data, &user); err != nil {
			continue
		}
		for name, def := range user.Viewers {
			r.viewers[name] = def
		}
	}
}

// Command builds the command that shows url with viewer. Names without a
// definition run as `viewer url`.
func (r *ViewerRegistry) Command(viewer string, mediaType Type, url string) (*exec.Cmd, error) {
	def, known := r.viewers[viewer]
	if !known {
		return exec.Command(viewer, url), nil
	}
	if !slices.Contains(def.Platforms, runtime.GOOS) {
		return nil, fmt.Errorf("%s not supported on %s", viewer, runtime.GOOS)
	}
	if mediaType != TypeImage || def.Image == nil {
		return nil, fmt.Errorf("%s cannot show %s", viewer, mediaType)
	}

	base := r.getArgs(def.Image)
	args := make([]string, 0, len(base)+1)
	args = append(args, base...)
	args = append(args, url)
	return exec.Command(viewer, args...), nil
}

func (r *ViewerRegistry) getArgs(a *ViewerArgs) []string {
	if a == nil {
		return nil
	}

	var platform []string
	switch runtime.GOOS {
	case "darwin":
		platform = a.ArgsDarwin
	case "linux":
		platform = a.ArgsLinux
	case "windows":
		platform = a.ArgsWindows
	}
	if len(platform) > 0 {
		return platform
	}
	return a.Args
}

// Installed reports whether viewer is on PATH.
func (r *ViewerRegistry) Installed(viewer string) bool {
	_, err := exec.LookPath(viewer)
	return err == nil
}

// FirstInstalled returns the first of candidates that is on PATH, or "".
func (r *ViewerRegistry) FirstInstalled(candidates []string) string {
	for _, v := range candidates {
		if r.Installed(v) {
			return v
		}
	}
	return ""
}
