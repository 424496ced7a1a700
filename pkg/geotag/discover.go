package geotag

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func isJPEGName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".jpeg"
}

// Discover lists the JPEG files under folder, sorted by path. With recursive
// set it descends into subdirectories, otherwise it reads only the top level.
func Discover(folder string, recursive bool) ([]string, error) {
	var files []string
	if recursive {
		err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isJPEGName(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && isJPEGName(e.Name()) {
				files = append(files, filepath.Join(folder, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
