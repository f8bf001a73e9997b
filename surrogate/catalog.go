// Package surrogate resolves a (gender, label, language) query to a
// substitute audio clip from a catalog of surrogate recordings. The catalog
// is a directory tree whose layout is a persisted contract shared with the
// surrogate libraries already in the field:
//
//	root/language/gender/label/*.wav
//	root/language/label/gender/*.wav
//	root/language/label/*.wav
//	root/language/gender/*.wav
//	root/gender/label/*.wav
//	root/label/gender/*.wav
//	root/label/*.wav
//	root/gender/*.wav
//
// The probes are tried in that fixed order; the first one that yields a
// candidate after label filtering stops the search, and one file is chosen
// uniformly at random from it.
package surrogate

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// Asset is one candidate surrogate file found by a Lister.
type Asset struct {
	Path string // full path or object key
	Name string // base filename
}

// Lister is the capability the catalog uses to scan one directory of the
// surrogate library. Implementations exist for the local filesystem and for
// S3; tests use an in-memory lister. A missing directory is an empty list,
// not an error.
type Lister interface {
	ListCandidates(ctx context.Context, path string) ([]Asset, *log.Status)
}

// Selection is the result of a successful resolution.
type Selection struct {
	Path     string
	Gender   string
	Label    string
	Language string
}

// Name returns the catalog-wide surrogate name used by the audit store:
// language_gender_label_basename (label lowercase, extension stripped).
func (s Selection) Name() string {
	base := s.Path
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return s.Language + `_` + s.Gender + `_` + strings.ToLower(s.Label) + `_` + base
}

// Catalog searches a surrogate library rooted at one path.
type Catalog struct {
	ctx    context.Context
	root   string
	lister Lister
	rand   *rand.Rand
}

// NewCatalog creates a catalog over the given root using the given lister.
func NewCatalog(ctx context.Context, root string, lister Lister) *Catalog {
	return &Catalog{
		ctx:    ctx,
		root:   root,
		lister: lister,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the random source used for file selection, so callers
// and tests can make selection deterministic.
func (c *Catalog) SetRand(r *rand.Rand) {
	c.rand = r
}

// Resolve finds a surrogate clip for the given annotation tags. Gender
// defaults to male and language to english when empty; the label is
// optional. Resolution failure is a hard error: substituting a wrong or
// missing surrogate would leak the original voice.
func (c *Catalog) Resolve(gender string, label string, language string) (Selection, *log.Status) {
	gender = strings.ToLower(strings.TrimSpace(gender))
	if gender == `` {
		gender = `male`
	}
	language = strings.ToLower(strings.TrimSpace(language))
	if language == `` {
		language = `english`
	}
	label = strings.ToLower(strings.TrimSpace(label))

	var candidates []Asset
	for _, path := range c.SearchOrder(gender, label, language) {
		assets, status := c.lister.ListCandidates(c.ctx, path)
		if status != nil {
			return Selection{}, status
		}
		if len(assets) == 0 {
			continue
		}
		if label != `` {
			// Files in a shared directory are tagged by label in their
			// name, e.g. PERSON.wav. No match means try the next probe,
			// never the unfiltered files of this one.
			var filtered []Asset
			for _, asset := range assets {
				if strings.Contains(strings.ToUpper(asset.Name), strings.ToUpper(label)) {
					filtered = append(filtered, asset)
				}
			}
			if len(filtered) == 0 {
				continue
			}
			candidates = filtered
		} else {
			candidates = assets
		}
		break
	}
	if len(candidates) == 0 {
		return Selection{}, log.ErrorNoErr(c.ctx, 404, `No surrogate found for gender=`+gender+
			` label=`+label+` language=`+language)
	}
	chosen := candidates[c.rand.Intn(len(candidates))]
	log.Info(c.ctx, `Selected surrogate`, chosen.Path)
	return Selection{Path: chosen.Path, Gender: gender, Label: label, Language: language}, nil
}

// SearchOrder returns the fixed probe sequence for a query. Exposed so the
// directory layout contract is directly testable.
func (c *Catalog) SearchOrder(gender string, label string, language string) []string {
	join := func(parts ...string) string {
		return filepath.Join(append([]string{c.root}, parts...)...)
	}
	var order []string
	if label != `` {
		order = append(order,
			join(language, gender, label),
			join(language, label, gender),
			join(language, label))
	}
	order = append(order, join(language, gender))
	if label != `` {
		order = append(order,
			join(gender, label),
			join(label, gender),
			join(label))
	}
	order = append(order, join(gender))
	return order
}
