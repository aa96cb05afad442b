package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func readJson5[T any](path string) (T, bool, error) {
	var out T
	contents, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return out, false, err
	}
	if len(contents) == 0 {
		return out, false, nil
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, fmt.Errorf("%s: %w", path, err)
	}
	return out, true, nil
}

// ReadConfig reads the configuration file at `name` (extension included),
// then merges in a `<name>.local.<ext>` sibling if one exists, the local
// file winning on conflicts. Returns os.ErrNotExist when neither file is
// present.
func ReadConfig[T any](name string) (T, error) {
	base, found, err := readJson5[T](name)
	if err != nil {
		return base, err
	}

	ext := filepath.Ext(name)
	localPath := strings.TrimSuffix(name, ext) + ".local" + ext
	local, foundLocal, err := readJson5[T](localPath)
	if err != nil {
		return base, err
	}
	if foundLocal {
		err = mergo.Merge(&base, local, mergo.WithOverride)
		if err != nil {
			return base, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if !found && !foundLocal {
		return base, os.ErrNotExist
	}
	return base, nil
}

// ReadRecursively is ReadConfig, except it walks up the filesystem from the
// working directory until it finds a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var out T

	current, err := os.Getwd()
	if err != nil {
		return out, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			parent := filepath.Dir(current)
			if parent == current {
				return out, os.ErrNotExist
			}
			current = parent
			continue
		}
		return config, err
	}
}
