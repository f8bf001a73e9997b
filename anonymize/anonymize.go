// Package anonymize orchestrates one anonymization job: decode the input,
// normalize the annotated spans, splice in surrogate voices, run the
// optional disguise chain, and encode the result, recording an audit trail
// when the request asks for one.
package anonymize

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/Beijukabruno/audio-anonymization-platform/annotation"
	"github.com/Beijukabruno/audio-anonymization-platform/audio"
	"github.com/Beijukabruno/audio-anonymization-platform/codec"
	"github.com/Beijukabruno/audio-anonymization-platform/db"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
	"github.com/Beijukabruno/audio-anonymization-platform/report"
	"github.com/Beijukabruno/audio-anonymization-platform/request"
	"github.com/Beijukabruno/audio-anonymization-platform/splice"
	"github.com/Beijukabruno/audio-anonymization-platform/surrogate"
	"github.com/Beijukabruno/audio-anonymization-platform/voice_mod"
)

// Codec converts between audio files and in-memory buffers.
type Codec interface {
	Decode(ctx context.Context, filePath string) (audio.Buffer, *log.Status)
	Encode(ctx context.Context, buffer audio.Buffer, outPath string) *log.Status
}

type ffmpegCodec struct{}

func (f ffmpegCodec) Decode(ctx context.Context, filePath string) (audio.Buffer, *log.Status) {
	return codec.Decode(ctx, filePath)
}

func (f ffmpegCodec) Encode(ctx context.Context, buffer audio.Buffer, outPath string) *log.Status {
	return codec.Encode(ctx, buffer, outPath)
}

// Result reports what one job produced.
type Result struct {
	OutputFile string
	Output     audio.Buffer
	Records    []splice.Record
}

type Anonymizer struct {
	ctx context.Context
	req request.Request

	// Collaborators default to the real ffmpeg codec and filesystem or S3
	// surrogate library; tests substitute in-memory ones.
	Codec  Codec
	Lister surrogate.Lister
	Loader splice.ClipLoader
	Rand   *rand.Rand
}

func NewAnonymizer(ctx context.Context, req request.Request) (*Anonymizer, *log.Status) {
	var a Anonymizer
	a.ctx = ctx
	a.req = req
	a.Codec = ffmpegCodec{}
	a.Loader = codec.Loader{}
	if req.SurrogatesBucket != `` {
		lister, status := surrogate.NewS3Lister(ctx, req.SurrogatesBucket)
		if status != nil {
			return nil, status
		}
		a.Lister = lister
		// an S3 catalog resolves to s3://bucket/key paths, which the
		// local ffmpeg loader cannot open
		loader, status := codec.NewS3Loader(ctx)
		if status != nil {
			return nil, status
		}
		a.Loader = loader
	} else {
		a.Lister = surrogate.DirLister{}
	}
	return &a, nil
}

// Run executes the job. When an audit database is configured the job row
// is always completed, in failed state with the error message if any
// pipeline step failed.
func (a *Anonymizer) Run() (Result, *log.Status) {
	var audit *db.DBAdapter
	var jobID int64
	if a.req.AuditDB != `` {
		adapter, status := db.NewDBAdapter(a.ctx, a.req.AuditDB)
		if status != nil {
			return Result{}, status
		}
		audit = &adapter
		defer audit.Close()
		jobID, status = audit.InsertJob(a.req.JobName, a.req.Username, a.req.InputFile, a.req.Strategy)
		if status != nil {
			return Result{}, status
		}
	}
	result, status := a.process(audit, jobID)
	if audit != nil {
		var errorMessage string
		if status != nil {
			errorMessage = status.Error()
		}
		complete := audit.CompleteJob(jobID, errorMessage)
		if status == nil {
			status = complete
		}
	}
	return result, status
}

func (a *Anonymizer) process(audit *db.DBAdapter, jobID int64) (Result, *log.Status) {
	var result Result
	buffer, status := a.Codec.Decode(a.ctx, a.req.InputFile)
	if status != nil {
		return result, status
	}
	log.Info(a.ctx, `decoded`, a.req.InputFile, buffer.Seconds(), `sec`,
		buffer.SampleRate, `Hz`, buffer.Channels, `ch`)
	if audit != nil {
		status = audit.UpdateInputMetadata(jobID, buffer.Seconds(), buffer.SampleRate, buffer.Channels)
		if status != nil {
			return result, status
		}
	}
	spans := annotation.Normalize(a.req.Annotations)
	if len(spans) > 0 {
		catalog := surrogate.NewCatalog(a.ctx, a.req.SurrogatesRoot, a.Lister)
		if a.Rand != nil {
			catalog.SetRand(a.Rand)
		}
		splicer := splice.NewSplicer(a.ctx, catalog, a.Loader)
		buffer, result.Records, status = splicer.Splice(buffer, spans, splice.Strategy(a.req.Strategy))
		if status != nil {
			return result, status
		}
		if audit != nil {
			status = audit.InsertUsage(jobID, result.Records)
			if status != nil {
				return result, status
			}
		}
	}
	buffer, status = a.disguise(buffer)
	if status != nil {
		return result, status
	}
	result.OutputFile = a.req.OutputFile
	if result.OutputFile == `` {
		result.OutputFile = defaultOutputPath(a.req.InputFile)
	}
	status = a.Codec.Encode(a.ctx, buffer, result.OutputFile)
	if status != nil {
		return result, status
	}
	result.Output = buffer
	if audit != nil {
		status = audit.UpdateOutputMetadata(jobID, result.OutputFile, buffer.Seconds())
		if status != nil {
			return result, status
		}
		if a.req.ReportFile != `` {
			rpt := report.NewExcelReport(a.ctx, a.req.ReportFile)
			status = rpt.Generate(audit)
			if status != nil {
				return result, status
			}
		}
	}
	return result, nil
}

// disguise runs the voice transform chain over each channel independently.
// Time-scale transforms change the frame count identically per channel, so
// the channels stay aligned.
func (a *Anonymizer) disguise(buffer audio.Buffer) (audio.Buffer, *log.Status) {
	params := voice_mod.ParamsFromMap(a.req.Disguise)
	if params.IsEmpty() {
		return buffer, nil
	}
	chain := voice_mod.Chain{
		Params:  params,
		Backend: voice_mod.ParseBackend(a.req.TimeScaleBackend),
	}
	channels := make([][]float64, buffer.Channels)
	for ch := 0; ch < buffer.Channels; ch++ {
		out, status := chain.Apply(a.ctx, buffer.Channel(ch), buffer.SampleRate)
		if status != nil {
			return buffer, status
		}
		channels[ch] = out
	}
	return audio.FromChannels(channels, buffer.SampleRate), nil
}

func defaultOutputPath(inputFile string) string {
	ext := filepath.Ext(inputFile)
	base := strings.TrimSuffix(inputFile, ext)
	if ext == `` {
		ext = `.wav`
	}
	return base + `_anonymized` + ext
}
