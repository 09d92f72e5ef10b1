// Package collect turns command-line path arguments into the ordered list of
// standalone lump files to add to an archive.
package collect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/samber/lo"

	"github.com/ossyrian/wadlumper/internal/wad2"
)

// Item is a standalone lump to add: NameSource names the lump, Path holds
// its bytes. They differ only when an argument used the NAME=PATH form.
type Item struct {
	NameSource string
	Path       string
}

// Paths expands args in order. A file argument is taken as-is, whatever its
// extension. A directory argument is walked in lexical order and every file
// whose extension equals ext (case-insensitive) is taken; an empty ext takes
// every file. An argument that does not exist but has the form NAME=PATH
// adds the file at PATH under NAME. Items repeating both name and path are
// kept at their first position.
func Paths(args []string, ext string) ([]Item, error) {
	var items []Item

	for _, arg := range args {
		nameSource, path, named, fi, err := resolve(arg)
		if err != nil {
			return nil, err
		}

		if !fi.IsDir() {
			items = append(items, Item{NameSource: nameSource, Path: path})
			continue
		}
		if named {
			return nil, fmt.Errorf("%w: %s is a directory and cannot be named %s",
				wad2.ErrSourceUnavailable, path, nameSource)
		}

		found, err := walk(path, ext)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}

	return lo.UniqBy(items, func(it Item) string {
		return it.NameSource + "\x00" + filepath.Clean(it.Path)
	}), nil
}

// resolve stats arg as a path. Only when nothing exists there is it split
// as NAME=PATH, so file names containing '=' keep working.
func resolve(arg string) (nameSource, path string, named bool, fi os.FileInfo, err error) {
	fi, err = os.Stat(arg)
	if err == nil {
		return arg, arg, false, fi, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", "", false, nil, fmt.Errorf("%w: %w", wad2.ErrSourceUnavailable, err)
	}

	name, p, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", "", false, nil, fmt.Errorf("%w: %w", wad2.ErrSourceUnavailable, err)
	}

	fi, err = os.Stat(p)
	if err != nil {
		return "", "", false, nil, fmt.Errorf("%w: %w", wad2.ErrSourceUnavailable, err)
	}
	return name, p, true, fi, nil
}

func walk(root, ext string) ([]Item, error) {
	var items []Item

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if ext != "" && !strings.EqualFold(filepath.Ext(path), ext) {
				return nil
			}
			items = append(items, Item{NameSource: path, Path: path})
			return nil
		},
		Unsorted: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to walk %s: %w", wad2.ErrIO, root, err)
	}

	return items, nil
}
