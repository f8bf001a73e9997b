package surrogate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// audioExtensions are the clip formats the catalog recognizes. Anything
// else in a surrogate directory is ignored.
var audioExtensions = map[string]bool{
	`wav`: true, `mp3`: true, `flac`: true, `ogg`: true, `m4a`: true,
}

// IsAudioFile reports whether the filename has a recognized audio extension.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), `.`))
	return audioExtensions[ext]
}

// DirLister scans surrogate directories on the local filesystem.
type DirLister struct{}

// ListCandidates returns the audio files directly inside path. A missing
// or unreadable directory yields an empty list.
func (d DirLister) ListCandidates(ctx context.Context, path string) ([]Asset, *log.Status) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, nil
	}
	var assets []Asset
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		assets = append(assets, Asset{
			Path: filepath.Join(path, entry.Name()),
			Name: entry.Name(),
		})
	}
	return assets, nil
}
