package request

import (
	"context"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// RequestDecoder decodes and validates a job request, collecting every
// problem it finds so the caller sees all of them at once.
type RequestDecoder struct {
	ctx    context.Context
	errors []string
}

func NewRequestDecoder(ctx context.Context) RequestDecoder {
	return RequestDecoder{ctx: ctx}
}

// ProcessFile reads, decodes, and validates a request YAML file.
func (d *RequestDecoder) ProcessFile(filePath string) (Request, *log.Status) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Request{}, log.Error(d.ctx, 400, err, `Error reading request file`, filePath)
	}
	return d.Process(content)
}

// Process decodes and validates request YAML content.
func (d *RequestDecoder) Process(content []byte) (Request, *log.Status) {
	var req Request
	err := yaml.Unmarshal(content, &req)
	if err != nil {
		return req, log.Error(d.ctx, 400, err, `Error decoding request yaml`)
	}
	d.Validate(&req)
	if len(d.errors) > 0 {
		return req, log.ErrorNoErr(d.ctx, 400, `Request has errors:`, strings.Join(d.errors, `; `))
	}
	return req, nil
}

// Validate checks required fields and fills defaults.
func (d *RequestDecoder) Validate(req *Request) {
	d.checkRequired(req)
	d.checkStrategy(req)
	d.checkBackend(req)
	d.checkAnnotations(req)
	d.checkReport(req)
}

func (d *RequestDecoder) checkRequired(req *Request) {
	if req.InputFile == `` {
		d.errors = append(d.errors, `Required field input_file: is empty`)
	}
	if req.SurrogatesRoot == `` && len(req.Annotations) > 0 {
		d.errors = append(d.errors, `Required field surrogates_root: is empty`)
	}
	if req.JobName == `` && req.InputFile != `` {
		req.JobName = req.InputFile
	}
	req.JobName = strings.Replace(req.JobName, ` `, `_`, -1)
}

func (d *RequestDecoder) checkStrategy(req *Request) {
	switch req.Strategy {
	case ``:
		req.Strategy = `direct`
	case `direct`, `fit`:
	default:
		d.errors = append(d.errors, `Field strategy: must be direct or fit, found `+req.Strategy)
	}
}

func (d *RequestDecoder) checkBackend(req *Request) {
	switch req.TimeScaleBackend {
	case ``:
		req.TimeScaleBackend = `wsola`
	case `wsola`, `phase_vocoder`, `fast_fft`:
	default:
		d.errors = append(d.errors, `Field time_scale_backend: must be wsola, phase_vocoder, or fast_fft, found `+req.TimeScaleBackend)
	}
}

func (d *RequestDecoder) checkReport(req *Request) {
	// the report is generated from the audit database, so one without the
	// other would be silently skipped
	if req.ReportFile != `` && req.AuditDB == `` {
		d.errors = append(d.errors, `Field report_file: requires audit_db`)
	}
}

func (d *RequestDecoder) checkAnnotations(req *Request) {
	for _, ann := range req.Annotations {
		if ann.Gender != `` && ann.Gender != `male` && ann.Gender != `female` {
			d.errors = append(d.errors, `Annotation gender: must be male or female, found `+ann.Gender)
		}
	}
	// zero-duration and overlapping annotations are legal input; the
	// normalizer drops and merges them
}
