// Package request defines the YAML job request that drives one
// anonymization run, and its decoder/validator.
package request

import (
	"github.com/Beijukabruno/audio-anonymization-platform/annotation"
)

// Request describes one anonymization job.
type Request struct {
	JobName        string `yaml:"job_name"`
	Username       string `yaml:"username"`
	InputFile      string `yaml:"input_file"`
	OutputFile     string `yaml:"output_file"`
	SurrogatesRoot string `yaml:"surrogates_root"`
	// SurrogatesBucket switches the catalog to an S3 library; the root
	// becomes a key prefix inside the bucket.
	SurrogatesBucket string                  `yaml:"surrogates_bucket"`
	Strategy         string                  `yaml:"strategy"` // direct | fit
	Annotations      []annotation.Annotation `yaml:"annotations"`
	// Disguise maps transform names to coefficients; absent names are
	// skipped. Unknown names are ignored so parameter files can carry
	// settings for other tools.
	Disguise         map[string]float64 `yaml:"disguise"`
	TimeScaleBackend string             `yaml:"time_scale_backend"` // wsola | phase_vocoder | fast_fft
	AuditDB          string             `yaml:"audit_db"`
	ReportFile       string             `yaml:"report_file"`
}
