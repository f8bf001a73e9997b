// Package splice rebuilds a waveform from original audio and surrogate
// clips, honoring a normalized annotation list. The engine never produces
// partial output: if any span fails to resolve or load, the whole call
// fails, because a half-anonymized track is worse than an explicit error.
package splice

import (
	"context"
	"math"

	"github.com/Beijukabruno/audio-anonymization-platform/annotation"
	"github.com/Beijukabruno/audio-anonymization-platform/audio"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
	"github.com/Beijukabruno/audio-anonymization-platform/surrogate"
)

// Strategy selects how a surrogate clip is placed into a span.
type Strategy string

const (
	// StrategyDirect splices the clip at its native duration; the output
	// track's total duration generally differs from the input's. That is
	// intentional and must not be corrected.
	StrategyDirect Strategy = `direct`
	// StrategyFit trims or pads the clip so the output duration equals
	// the input duration exactly.
	StrategyFit Strategy = `fit`
)

// ClipLoader loads a resolved surrogate asset into memory. Production uses
// the codec package; tests supply an in-memory loader.
type ClipLoader interface {
	Load(ctx context.Context, path string) (audio.Buffer, *log.Status)
}

// Record is the audit entry emitted for every replaced span.
type Record struct {
	StartSec         float64  `json:"start_sec"`
	EndSec           float64  `json:"end_sec"`
	DurationSec      float64  `json:"duration_sec"`
	Gender           string   `json:"gender"`
	Label            string   `json:"label"`
	Language         string   `json:"language"`
	SurrogatePath    string   `json:"surrogate_path"`
	SurrogateName    string   `json:"surrogate_name"`
	SurrogateSeconds float64  `json:"surrogate_seconds"`
	Strategy         Strategy `json:"strategy"`
}

// Splicer stitches surrogate clips into original audio.
type Splicer struct {
	ctx     context.Context
	catalog *surrogate.Catalog
	loader  ClipLoader
}

// NewSplicer creates a splicer over the given catalog and loader.
func NewSplicer(ctx context.Context, catalog *surrogate.Catalog, loader ClipLoader) *Splicer {
	return &Splicer{ctx: ctx, catalog: catalog, loader: loader}
}

// Splice walks the normalized spans in order, copying original audio
// between spans and surrogate audio inside them. Span times are always
// interpreted against the original track's timeline, so a duration change
// introduced by StrategyDirect never shifts later spans.
func (s *Splicer) Splice(original audio.Buffer, spans []annotation.Annotation, strategy Strategy) (audio.Buffer, []Record, *log.Status) {
	if len(spans) == 0 {
		return original, nil, nil
	}
	if status := s.checkNormalized(spans); status != nil {
		return audio.Buffer{}, nil, status
	}
	if strategy != StrategyDirect && strategy != StrategyFit {
		return audio.Buffer{}, nil, log.ErrorNoErr(s.ctx, 400, `Unknown splice strategy`, string(strategy))
	}

	output := audio.Buffer{SampleRate: original.SampleRate, Channels: original.Channels}
	records := make([]Record, 0, len(spans))
	cursor := 0
	for _, span := range spans {
		startFrame := original.FrameAt(span.StartSec)
		endFrame := original.FrameAt(span.EndSec)
		if startFrame > cursor {
			output = output.Append(original.SliceFrames(cursor, startFrame))
		}
		clip, record, status := s.loadSurrogate(span, endFrame-startFrame, original, strategy)
		if status != nil {
			return audio.Buffer{}, nil, status
		}
		output = output.Append(clip)
		records = append(records, record)
		// later spans are defined on the original timeline
		cursor = endFrame
	}
	if cursor < original.Frames() {
		output = output.Append(original.SliceFrames(cursor, original.Frames()))
	}
	return output, records, nil
}

// loadSurrogate resolves, loads, and format-adapts one surrogate clip.
func (s *Splicer) loadSurrogate(span annotation.Annotation, spanFrames int, original audio.Buffer, strategy Strategy) (audio.Buffer, Record, *log.Status) {
	selection, status := s.catalog.Resolve(span.Gender, span.Label, span.Language)
	if status != nil {
		return audio.Buffer{}, Record{}, status
	}
	clip, status := s.loader.Load(s.ctx, selection.Path)
	if status != nil {
		return audio.Buffer{}, Record{}, status
	}
	nativeSeconds := clip.Seconds()
	if strategy == StrategyFit {
		// trim or pad at the clip's native rate first, then adapt the
		// format, then pin to the span's exact frame count so rate
		// conversion rounding cannot drift the output duration
		nativeFrames := int(math.Round(span.DurationSec() * float64(clip.SampleRate)))
		clip = clip.FitFrames(nativeFrames)
		clip = clip.SetSampleRate(original.SampleRate).SetChannels(original.Channels)
		clip = clip.FitFrames(spanFrames)
	} else {
		clip = clip.SetSampleRate(original.SampleRate).SetChannels(original.Channels)
	}
	record := Record{
		StartSec:         span.StartSec,
		EndSec:           span.EndSec,
		DurationSec:      span.DurationSec(),
		Gender:           selection.Gender,
		Label:            selection.Label,
		Language:         selection.Language,
		SurrogatePath:    selection.Path,
		SurrogateName:    selection.Name(),
		SurrogateSeconds: nativeSeconds,
		Strategy:         strategy,
	}
	log.Info(s.ctx, `Spliced span`, span.StartSec, `-`, span.EndSec, `with`, selection.Path)
	return clip, record, nil
}

// checkNormalized is a defensive assertion that the caller normalized the
// spans: sorted by start, pairwise non-overlapping, positive duration.
func (s *Splicer) checkNormalized(spans []annotation.Annotation) *log.Status {
	for i, span := range spans {
		if span.EndSec <= span.StartSec {
			return log.ErrorNoErr(s.ctx, 400, `Span has non-positive duration; normalize annotations first`)
		}
		if i > 0 && span.StartSec <= spans[i-1].EndSec {
			return log.ErrorNoErr(s.ctx, 400, `Spans overlap or are unsorted; normalize annotations first`)
		}
	}
	return nil
}
