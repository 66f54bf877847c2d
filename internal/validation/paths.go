package validation

import (
	"os"
	"path/filepath"
)

// PathHandler resolves gallr's on-disk locations, applying defaults for
// empty values.
type PathHandler struct {
	validator *FilePathValidator
}

func NewSecurePathHandler() *PathHandler {
	return &PathHandler{validator: NewFilePathValidator()}
}

func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{validator: NewPermissiveFilePathValidator()}
}

func (ph *PathHandler) ExpandAndValidatePath(path string) (string, error) {
	return ph.validator.ValidateAndSanitize(path)
}

func defaultPath(parts ...string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{homeDir}, parts...)...), nil
}

// GetSecureDBPath validates the bbolt database path.
func (ph *PathHandler) GetSecureDBPath(userPath string) (string, error) {
	if userPath == "" {
		var err error
		if userPath, err = defaultPath(".gallr", "gallr.db"); err != nil {
			return "", err
		}
	}
	return ph.validator.ValidateFile(userPath)
}

func (ph *PathHandler) GetSecureConfigPath(userPath string) (string, error) {
	if userPath == "" {
		var err error
		if userPath, err = defaultPath(".config", "gallr", "config.toml"); err != nil {
			return "", err
		}
	}
	return ph.validator.ValidateFile(userPath)
}

// GetSecureIndexPath validates the favorites index path. Bleve indexes are
// directories.
func (ph *PathHandler) GetSecureIndexPath(userPath string) (string, error) {
	if userPath == "" {
		var err error
		if userPath, err = defaultPath(".gallr", "favorites.bleve"); err != nil {
			return "", err
		}
	}
	return ph.validator.ValidateDirectory(userPath, false)
}

func (ph *PathHandler) GetSecureLogPath(userPath string) (string, error) {
	if userPath == "" {
		var err error
		if userPath, err = defaultPath(".gallr", "gallr.log"); err != nil {
			return "", err
		}
	}
	return ph.validator.ValidateFile(userPath)
}

// EnsureSecureDirectory validates and creates path.
func (ph *PathHandler) EnsureSecureDirectory(path string) (string, error) {
	return ph.validator.ValidateDirectory(path, true)
}
