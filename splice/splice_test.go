package splice

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/Beijukabruno/audio-anonymization-platform/annotation"
	"github.com/Beijukabruno/audio-anonymization-platform/audio"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
	"github.com/Beijukabruno/audio-anonymization-platform/surrogate"
)

// memoryLister serves fixed directory listings.
type memoryLister struct {
	dirs map[string][]string
}

func (m *memoryLister) ListCandidates(ctx context.Context, path string) ([]surrogate.Asset, *log.Status) {
	var assets []surrogate.Asset
	for _, name := range m.dirs[path] {
		assets = append(assets, surrogate.Asset{Path: filepath.Join(path, name), Name: name})
	}
	return assets, nil
}

// memoryLoader serves fixed clips by path.
type memoryLoader struct {
	clips map[string]audio.Buffer
}

func (m *memoryLoader) Load(ctx context.Context, path string) (audio.Buffer, *log.Status) {
	clip, ok := m.clips[path]
	if !ok {
		return audio.Buffer{}, log.ErrorNoErr(ctx, 404, `No such clip`, path)
	}
	return clip.Clone(), nil
}

func constantBuffer(value float64, frames int, rate int, channels int) audio.Buffer {
	buf := audio.NewSilence(frames, rate, channels)
	for i := range buf.Samples {
		buf.Samples[i] = value
	}
	return buf
}

func newTestSplicer(clipFrames int, clipRate int) *Splicer {
	ctx := context.Background()
	maleDir := filepath.Join(`root`, `english`, `male`)
	lister := &memoryLister{dirs: map[string][]string{maleDir: {`voice.wav`}}}
	loader := &memoryLoader{clips: map[string]audio.Buffer{
		filepath.Join(maleDir, `voice.wav`): constantBuffer(0.5, clipFrames, clipRate, 1),
	}}
	catalog := surrogate.NewCatalog(ctx, `root`, lister)
	catalog.SetRand(rand.New(rand.NewSource(7)))
	return NewSplicer(ctx, catalog, loader)
}

func TestSpliceEmptySpansReturnsOriginal(t *testing.T) {
	splicer := newTestSplicer(100, 16000)
	original := constantBuffer(0.25, 1000, 16000, 1)
	output, records, status := splicer.Splice(original, nil, StrategyFit)
	if status != nil {
		t.Fatal(status)
	}
	if len(records) != 0 {
		t.Fatal(`expected no records`)
	}
	if len(output.Samples) != len(original.Samples) {
		t.Fatal(`output length changed`)
	}
	for i := range output.Samples {
		if output.Samples[i] != original.Samples[i] {
			t.Fatal(`sample`, i, `changed`)
		}
	}
}

func TestSpliceFitPreservesTotalDuration(t *testing.T) {
	// 10 second mono 16kHz clip, span 2.0-4.0 replaced, degenerate span dropped
	splicer := newTestSplicer(16000, 16000) // 1s surrogate, shorter than span
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := annotation.Normalize([]annotation.Annotation{
		{StartSec: 2.0, EndSec: 4.0, Gender: `male`, Language: `english`},
		{StartSec: 4.0, EndSec: 4.0, Gender: `male`},
	})
	output, records, status := splicer.Splice(original, spans, StrategyFit)
	if status != nil {
		t.Fatal(status)
	}
	if output.Frames() != 160000 {
		t.Fatal(`fit strategy must preserve duration exactly, got`, output.Frames(), `frames`)
	}
	if len(records) != 1 {
		t.Fatal(`expected one record, got`, len(records))
	}
	// samples outside the span are bit-identical
	for i := 0; i < 32000; i++ {
		if output.Samples[i] != 0.25 {
			t.Fatal(`pre-span sample`, i, `modified`)
		}
	}
	for i := 64000; i < 160000; i++ {
		if output.Samples[i] != 0.25 {
			t.Fatal(`post-span sample`, i, `modified`)
		}
	}
	// span filled with 1s of surrogate then padded silence
	if output.Samples[33000] != 0.5 {
		t.Fatal(`expected surrogate sample inside span`)
	}
	if output.Samples[50000] != 0 {
		t.Fatal(`expected padding silence after short surrogate`)
	}
}

func TestSpliceFitTrimsLongSurrogate(t *testing.T) {
	splicer := newTestSplicer(80000, 16000) // 5s surrogate, longer than span
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := []annotation.Annotation{{StartSec: 2.0, EndSec: 4.0, Gender: `male`, Language: `english`}}
	output, _, status := splicer.Splice(original, spans, StrategyFit)
	if status != nil {
		t.Fatal(status)
	}
	if output.Frames() != 160000 {
		t.Fatal(`expected exact duration, got`, output.Frames())
	}
	if output.Samples[63000] != 0.5 {
		t.Fatal(`span should be surrogate all the way to its end`)
	}
}

func TestSpliceDirectChangesDuration(t *testing.T) {
	clipFrames := 24000 // 1.5s at 16kHz
	splicer := newTestSplicer(clipFrames, 16000)
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := []annotation.Annotation{{StartSec: 2.0, EndSec: 4.0, Gender: `male`, Language: `english`}}
	output, records, status := splicer.Splice(original, spans, StrategyDirect)
	if status != nil {
		t.Fatal(status)
	}
	// gaps total 8s = 128000 frames, plus the clip's native 24000
	if output.Frames() != 128000+clipFrames {
		t.Fatal(`direct strategy must keep native clip duration, got`, output.Frames())
	}
	if records[0].Strategy != StrategyDirect {
		t.Fatal(`record should carry the chosen strategy`)
	}
}

func TestSpliceFitAdaptsClipRate(t *testing.T) {
	splicer := newTestSplicer(8000, 8000) // 1s surrogate at 8kHz
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := []annotation.Annotation{{StartSec: 2.0, EndSec: 4.0, Gender: `male`, Language: `english`}}
	output, _, status := splicer.Splice(original, spans, StrategyFit)
	if status != nil {
		t.Fatal(status)
	}
	if output.Frames() != 160000 {
		t.Fatal(`rate adaptation must not drift the fit duration, got`, output.Frames())
	}
	if output.SampleRate != 16000 || output.Channels != 1 {
		t.Fatal(`output format must match the original`)
	}
}

func TestSpliceResolutionFailureAbortsWholeCall(t *testing.T) {
	splicer := newTestSplicer(16000, 16000)
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := []annotation.Annotation{
		{StartSec: 1.0, EndSec: 2.0, Gender: `male`, Language: `english`},
		{StartSec: 5.0, EndSec: 6.0, Gender: `female`, Language: `english`}, // no female pool
	}
	_, records, status := splicer.Splice(original, spans, StrategyFit)
	if status == nil {
		t.Fatal(`expected hard failure when any span cannot resolve`)
	}
	if records != nil {
		t.Fatal(`no partial records on failure`)
	}
}

func TestSpliceRejectsUnnormalizedSpans(t *testing.T) {
	splicer := newTestSplicer(16000, 16000)
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := []annotation.Annotation{
		{StartSec: 1.0, EndSec: 3.0, Gender: `male`, Language: `english`},
		{StartSec: 2.0, EndSec: 4.0, Gender: `male`, Language: `english`},
	}
	_, _, status := splicer.Splice(original, spans, StrategyFit)
	if status == nil || status.Code != 400 {
		t.Fatal(`expected defensive rejection of overlapping spans`)
	}
}

func TestSpliceRecordNaming(t *testing.T) {
	splicer := newTestSplicer(16000, 16000)
	original := constantBuffer(0.25, 160000, 16000, 1)
	spans := []annotation.Annotation{{StartSec: 2.0, EndSec: 4.0, Gender: `male`, Label: `PERSON`, Language: `english`}}
	_, _, status := splicer.Splice(original, spans, StrategyFit)
	if status == nil || status.Code != 404 {
		t.Fatal(`label filter should fail against unlabeled pool`)
	}

	// labeled pool resolves and the record carries the catalog-wide name
	ctx := context.Background()
	dir := filepath.Join(`root`, `english`, `male`, `person`)
	lister := &memoryLister{dirs: map[string][]string{dir: {`PERSON_A.wav`}}}
	loader := &memoryLoader{clips: map[string]audio.Buffer{
		filepath.Join(dir, `PERSON_A.wav`): constantBuffer(0.5, 16000, 16000, 1),
	}}
	catalog := surrogate.NewCatalog(ctx, `root`, lister)
	catalog.SetRand(rand.New(rand.NewSource(7)))
	labeled := NewSplicer(ctx, catalog, loader)
	_, records, status := labeled.Splice(original, spans, StrategyFit)
	if status != nil {
		t.Fatal(status)
	}
	if records[0].SurrogateName != `english_male_person_PERSON_A` {
		t.Fatal(`unexpected surrogate name:`, records[0].SurrogateName)
	}
}
