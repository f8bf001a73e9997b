package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Beijukabruno/audio-anonymization-platform/db"
	"github.com/Beijukabruno/audio-anonymization-platform/splice"
)

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	adapter, status := db.NewDBAdapter(ctx, filepath.Join(dir, "audit.db"))
	if status != nil {
		t.Fatal(status)
	}
	defer adapter.Close()
	jobID, status := adapter.InsertJob(`meeting_01`, `jude`, `/in/meeting.wav`, `fit`)
	if status != nil {
		t.Fatal(status)
	}
	records := []splice.Record{
		{StartSec: 1, EndSec: 3, DurationSec: 2, Gender: `female`, Label: `PERSON_A`,
			Language: `english`, SurrogatePath: `/sur/a.wav`,
			SurrogateName: `english_female_person_a`, SurrogateSeconds: 4,
			Strategy: splice.StrategyFit},
	}
	status = adapter.InsertUsage(jobID, records)
	if status != nil {
		t.Fatal(status)
	}
	status = adapter.CompleteJob(jobID, ``)
	if status != nil {
		t.Fatal(status)
	}
	reportPath := filepath.Join(dir, "audit.xlsx")
	rpt := NewExcelReport(ctx, reportPath)
	status = rpt.Generate(&adapter)
	if status != nil {
		t.Fatal(status)
	}
	file, err := excelize.OpenFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	jobName, err := file.GetCellValue(`Jobs`, `B2`)
	if err != nil {
		t.Fatal(err)
	}
	if jobName != `meeting_01` {
		t.Error(`expected job name in Jobs sheet, got`, jobName)
	}
	surrogateName, err := file.GetCellValue(`Usage`, `H2`)
	if err != nil {
		t.Fatal(err)
	}
	if surrogateName != `english_female_person_a` {
		t.Error(`expected surrogate name in Usage sheet, got`, surrogateName)
	}
	voice, err := file.GetCellValue(`Voices`, `A2`)
	if err != nil {
		t.Fatal(err)
	}
	if voice != `english_female_person_a` {
		t.Error(`expected voice name in Voices sheet, got`, voice)
	}
}
