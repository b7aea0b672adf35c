package util

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the current user's home directory, and a leading "~name" with the home
// directory of user name. A path naming an unknown user is returned unchanged.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	name, rest := path[1:], ""
	if i := strings.IndexAny(name, "/"+string(filepath.Separator)); i >= 0 {
		name, rest = name[:i], name[i:]
	}
	if name == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			return path, nil
		}
		return "", err
	}
	return filepath.Join(u.HomeDir, rest), nil
}
