package surrogate

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// memoryLister serves a fixed map of directory -> filenames and records
// every probe it receives.
type memoryLister struct {
	dirs   map[string][]string
	probes []string
}

func (m *memoryLister) ListCandidates(ctx context.Context, path string) ([]Asset, *log.Status) {
	m.probes = append(m.probes, path)
	var assets []Asset
	for _, name := range m.dirs[path] {
		if IsAudioFile(name) {
			assets = append(assets, Asset{Path: filepath.Join(path, name), Name: name})
		}
	}
	return assets, nil
}

func newTestCatalog(dirs map[string][]string) (*Catalog, *memoryLister) {
	lister := &memoryLister{dirs: dirs}
	catalog := NewCatalog(context.Background(), `root`, lister)
	catalog.SetRand(rand.New(rand.NewSource(1)))
	return catalog, lister
}

func TestSearchOrderWithLabel(t *testing.T) {
	catalog, _ := newTestCatalog(nil)
	order := catalog.SearchOrder(`male`, `person`, `english`)
	expected := []string{
		filepath.Join(`root`, `english`, `male`, `person`),
		filepath.Join(`root`, `english`, `person`, `male`),
		filepath.Join(`root`, `english`, `person`),
		filepath.Join(`root`, `english`, `male`),
		filepath.Join(`root`, `male`, `person`),
		filepath.Join(`root`, `person`, `male`),
		filepath.Join(`root`, `person`),
		filepath.Join(`root`, `male`),
	}
	if len(order) != len(expected) {
		t.Fatal(`expected`, len(expected), `probes, got`, len(order))
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatal(`probe`, i, `expected`, expected[i], `got`, order[i])
		}
	}
}

func TestSearchOrderWithoutLabel(t *testing.T) {
	catalog, _ := newTestCatalog(nil)
	order := catalog.SearchOrder(`female`, ``, `luganda`)
	if len(order) != 2 {
		t.Fatal(`expected 2 probes without label, got`, order)
	}
	if order[0] != filepath.Join(`root`, `luganda`, `female`) || order[1] != filepath.Join(`root`, `female`) {
		t.Fatal(`unexpected probe order:`, order)
	}
}

func TestResolveFirstNonEmptyDirectoryWins(t *testing.T) {
	catalog, lister := newTestCatalog(map[string][]string{
		filepath.Join(`root`, `english`, `male`): {`a.wav`, `b.wav`},
		filepath.Join(`root`, `male`):            {`c.wav`},
	})
	selection, status := catalog.Resolve(`male`, ``, `english`)
	if status != nil {
		t.Fatal(status)
	}
	if filepath.Dir(selection.Path) != filepath.Join(`root`, `english`, `male`) {
		t.Fatal(`expected language-specific pool, got`, selection.Path)
	}
	// search must stop at the first hit
	if len(lister.probes) != 1 {
		t.Fatal(`expected search to stop at first non-empty directory, probes:`, lister.probes)
	}
}

func TestResolveLabelFilterDoesNotFallThrough(t *testing.T) {
	// The first matching directory has files, but none contain the label:
	// the search must move on, not use the unfiltered files.
	catalog, _ := newTestCatalog(map[string][]string{
		filepath.Join(`root`, `english`, `person`): {`other.wav`},
		filepath.Join(`root`, `person`):            {`PERSON_01.wav`, `person_02.wav`},
	})
	selection, status := catalog.Resolve(`male`, `person`, `english`)
	if status != nil {
		t.Fatal(status)
	}
	if filepath.Dir(selection.Path) != filepath.Join(`root`, `person`) {
		t.Fatal(`expected label match in fallback directory, got`, selection.Path)
	}
}

func TestResolveLabelFilterCaseInsensitive(t *testing.T) {
	catalog, _ := newTestCatalog(map[string][]string{
		filepath.Join(`root`, `english`, `male`, `person`): {`Person_clip.mp3`, `readme.txt`},
	})
	selection, status := catalog.Resolve(`male`, `PERSON`, `english`)
	if status != nil {
		t.Fatal(status)
	}
	if selection.Name() != `english_male_person_Person_clip` {
		t.Fatal(`unexpected surrogate name:`, selection.Name())
	}
}

func TestResolveNotFoundIsHardError(t *testing.T) {
	catalog, _ := newTestCatalog(nil)
	_, status := catalog.Resolve(`female`, `person`, `english`)
	if status == nil {
		t.Fatal(`expected resolution failure`)
	}
	if status.Code != 404 {
		t.Fatal(`expected 404 status, got`, status.Code)
	}
}

func TestResolveDefaultsGenderAndLanguage(t *testing.T) {
	catalog, lister := newTestCatalog(map[string][]string{
		filepath.Join(`root`, `male`): {`voice.wav`},
	})
	selection, status := catalog.Resolve(``, ``, ``)
	if status != nil {
		t.Fatal(status)
	}
	if selection.Gender != `male` || selection.Language != `english` {
		t.Fatal(`expected defaults male/english, got`, selection)
	}
	if lister.probes[0] != filepath.Join(`root`, `english`, `male`) {
		t.Fatal(`expected english/male probed first, got`, lister.probes[0])
	}
}

func TestResolveDirectorySelectionDeterministic(t *testing.T) {
	dirs := map[string][]string{
		filepath.Join(`root`, `english`, `female`): {`x.wav`, `y.wav`, `z.wav`},
	}
	var firstDir string
	for i := 0; i < 10; i++ {
		catalog, _ := newTestCatalog(dirs)
		catalog.SetRand(rand.New(rand.NewSource(int64(i))))
		selection, status := catalog.Resolve(`female`, ``, `english`)
		if status != nil {
			t.Fatal(status)
		}
		dir := filepath.Dir(selection.Path)
		if firstDir == `` {
			firstDir = dir
		} else if dir != firstDir {
			t.Fatal(`directory selection must not depend on the random source`)
		}
	}
}
