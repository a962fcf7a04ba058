// Package util - Image path lists for benchmark runs.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PathSeparator is the delimiter used by the mobile bridge and the CLI to pack
// several image paths into a single string.
const PathSeparator = ';'

// ImageExtensions are the file extensions picked up by ListImagePaths.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// SplitPaths splits a delimited path string into an ordered list.
//
// Every delimiter closes the token accumulated so far, so consecutive
// delimiters yield empty entries. The trailing token is only kept when it is
// non-empty, which means a trailing delimiter adds nothing.
//
// Arguments:
//   - text: The delimited paths, e.g. "a.jpg;b.jpg".
//   - delim: The delimiter rune.
//
// Returns:
//   - []string: The paths in input order. Never nil.
func SplitPaths(text string, delim rune) []string {
	paths := make([]string, 0)

	var token strings.Builder
	for _, r := range text {
		if r == delim {
			paths = append(paths, token.String())
			token.Reset()
			continue
		}
		token.WriteRune(r)
	}

	if token.Len() > 0 {
		paths = append(paths, token.String())
	}

	return paths
}

// JoinPaths is the inverse of SplitPaths for lists without empty entries. A
// trailing delimiter is appended after every path, the way the mobile app
// builds its argument.
func JoinPaths(paths []string, delim rune) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteRune(delim)
	}
	return b.String()
}

type imagePath struct {
	path  string
	frame int
	named bool
}

// ListImagePaths lists the image files of a directory in benchmark order.
//
// Files named like "frame-12.jpg" (or plain "12.jpg") are ordered by their frame
// number and come first; every other image follows in lexical order.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []string: Image paths.
//   - error: Error if the directory cannot be read or holds no images.
func ListImagePaths(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image directory %s", dir)
	}

	var images []imagePath
	for _, file := range files {
		if file.IsDir() || !isImage(file.Name()) {
			continue
		}

		ext := filepath.Ext(file.Name())
		stem := strings.TrimPrefix(strings.TrimSuffix(file.Name(), ext), "frame-")
		frame, convErr := strconv.Atoi(stem)
		images = append(images, imagePath{
			path:  filepath.Join(dir, file.Name()),
			frame: frame,
			named: convErr != nil,
		})
	}

	if len(images) == 0 {
		return nil, errors.Errorf("no images found in directory %s", dir)
	}

	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if a.named != b.named {
			return !a.named
		}
		if !a.named && a.frame != b.frame {
			return a.frame < b.frame
		}
		return a.path < b.path
	})

	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.path
	}
	return paths, nil
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
