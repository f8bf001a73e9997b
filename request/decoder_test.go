package request

import (
	"context"
	"strings"
	"testing"
)

func TestDecodeValidRequest(t *testing.T) {
	content := `
job_name: jude test
input_file: /audio/interview.mp3
output_file: /audio/interview.anonymized.wav
surrogates_root: /data/surrogates
strategy: fit
annotations:
  - start_sec: 2.0
    end_sec: 4.0
    gender: male
    label: PERSON
    language: english
disguise:
  mcadams: 0.8
  resamp: 0.85
`
	decoder := NewRequestDecoder(context.Background())
	req, status := decoder.Process([]byte(content))
	if status != nil {
		t.Fatal(status)
	}
	if req.JobName != `jude_test` {
		t.Fatal(`job name should have spaces replaced, got`, req.JobName)
	}
	if req.Strategy != `fit` || len(req.Annotations) != 1 {
		t.Fatal(`request fields wrong:`, req)
	}
	if req.Disguise[`mcadams`] != 0.8 {
		t.Fatal(`disguise params not decoded`)
	}
	if req.TimeScaleBackend != `wsola` {
		t.Fatal(`expected default backend wsola, got`, req.TimeScaleBackend)
	}
}

func TestDecodeMissingInputFile(t *testing.T) {
	decoder := NewRequestDecoder(context.Background())
	_, status := decoder.Process([]byte(`strategy: fit`))
	if status == nil {
		t.Fatal(`expected validation failure`)
	}
	if !strings.Contains(status.Message, `input_file`) {
		t.Fatal(`error should name the missing field, got`, status.Message)
	}
}

func TestDecodeBadStrategyAndGender(t *testing.T) {
	content := `
input_file: a.wav
surrogates_root: /s
strategy: partial
annotations:
  - start_sec: 1.0
    end_sec: 2.0
    gender: robot
`
	decoder := NewRequestDecoder(context.Background())
	_, status := decoder.Process([]byte(content))
	if status == nil {
		t.Fatal(`expected validation failure`)
	}
	if !strings.Contains(status.Message, `strategy`) || !strings.Contains(status.Message, `gender`) {
		t.Fatal(`both errors should be reported together, got`, status.Message)
	}
}

func TestDecodeDefaultsStrategyDirect(t *testing.T) {
	decoder := NewRequestDecoder(context.Background())
	req, status := decoder.Process([]byte(`input_file: a.wav`))
	if status != nil {
		t.Fatal(status)
	}
	if req.Strategy != `direct` {
		t.Fatal(`expected default strategy direct, got`, req.Strategy)
	}
}

func TestDecodeReportWithoutAuditDB(t *testing.T) {
	content := `
input_file: a.wav
report_file: audit.xlsx
`
	decoder := NewRequestDecoder(context.Background())
	_, status := decoder.Process([]byte(content))
	if status == nil {
		t.Fatal(`expected validation failure`)
	}
	if !strings.Contains(status.Message, `report_file`) {
		t.Fatal(`error should name report_file, got`, status.Message)
	}
	decoder = NewRequestDecoder(context.Background())
	_, status = decoder.Process([]byte(content + "audit_db: audit.db\n"))
	if status != nil {
		t.Fatal(`report_file with audit_db should be valid:`, status)
	}
}
