// Package annotation models the time spans marked for replacement and the
// normalization algorithm that merges overlapping spans before splicing.
package annotation

import "sort"

// Annotation is one caller-supplied time span tagged for replacement.
// Times are in seconds from the start of the clip.
type Annotation struct {
	StartSec float64 `yaml:"start_sec" json:"start_sec"`
	EndSec   float64 `yaml:"end_sec" json:"end_sec"`
	Gender   string  `yaml:"gender" json:"gender"`     // male | female
	Label    string  `yaml:"label" json:"label"`       // optional tag, e.g. PERSON
	Language string  `yaml:"language" json:"language"` // e.g. english, luganda
}

// DurationSec returns the span duration, never negative.
func (a Annotation) DurationSec() float64 {
	if a.EndSec <= a.StartSec {
		return 0
	}
	return a.EndSec - a.StartSec
}

// Normalize prepares annotations for splicing:
//   - drops zero and negative duration spans
//   - sorts by start time (stable, so equal starts keep caller order)
//   - merges spans that overlap or touch into one span covering both
//
// When two spans merge, the start stays at the earlier span's start, the end
// is the later of the two ends, and gender/label/language take the later
// span's value when it is non-empty, else keep the earlier span's value.
// Normalize is idempotent: applying it to its own output changes nothing.
func Normalize(annotations []Annotation) []Annotation {
	cleaned := make([]Annotation, 0, len(annotations))
	for _, ann := range annotations {
		if ann.EndSec > ann.StartSec {
			cleaned = append(cleaned, ann)
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].StartSec < cleaned[j].StartSec
	})
	var merged []Annotation
	for _, ann := range cleaned {
		if len(merged) == 0 {
			merged = append(merged, ann)
			continue
		}
		last := &merged[len(merged)-1]
		if ann.StartSec <= last.EndSec {
			if ann.EndSec > last.EndSec {
				last.EndSec = ann.EndSec
			}
			if ann.Gender != `` {
				last.Gender = ann.Gender
			}
			if ann.Label != `` {
				last.Label = ann.Label
			}
			if ann.Language != `` {
				last.Language = ann.Language
			}
		} else {
			merged = append(merged, ann)
		}
	}
	return merged
}
