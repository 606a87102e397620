package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// siblingExts are tried in order when the exact recorded file is absent.
// Exporters frequently reference a format the artist later converted.
var siblingExts = []string{".png", ".jpg", ".jpeg", ".tga", ".bmp"}

// Resolve maps an image URI recorded in a mesh file to a real path on disk.
// Relative URIs resolve against the mesh file's directory. When the exact
// file is missing, the same stem is tried with each known image extension.
// Embedded data URIs are not materialized.
func Resolve(meshPath, uri string) (string, bool) {
	if uri == "" || strings.HasPrefix(uri, "data:") {
		return "", false
	}
	uri = strings.ReplaceAll(uri, "\\", "/")

	cand := uri
	if !filepath.IsAbs(cand) {
		cand = filepath.Join(filepath.Dir(meshPath), uri)
	}
	if fileExists(cand) {
		return cand, true
	}

	stem := strings.TrimSuffix(cand, filepath.Ext(cand))
	for _, ext := range siblingExts {
		if p := stem + ext; p != cand && fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
