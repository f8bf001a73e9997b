// Package report exports the audit database to an Excel workbook with one
// sheet of processing jobs, one of surrogate usage, and one of per-voice
// usage statistics.
package report

import (
	"context"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Beijukabruno/audio-anonymization-platform/db"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

const (
	jobsSheet   = "Jobs"
	usageSheet  = "Usage"
	voicesSheet = "Voices"
)

type ExcelReport struct {
	ctx      context.Context
	file     *excelize.File
	filepath string
	styleId  int
	lineNum  int
}

func NewExcelReport(ctx context.Context, filePath string) ExcelReport {
	var r ExcelReport
	r.ctx = ctx
	r.file = excelize.NewFile()
	r.filepath = filePath
	return r
}

// Generate reads the audit tables and writes the workbook to disk.
func (r *ExcelReport) Generate(adapter *db.DBAdapter) *log.Status {
	status := r.setStyle()
	if status != nil {
		return status
	}
	jobs, status := adapter.SelectJobs()
	if status != nil {
		return status
	}
	status = r.writeJobs(jobs)
	if status != nil {
		return status
	}
	status = r.writeUsage(adapter, jobs)
	if status != nil {
		return status
	}
	voices, status := adapter.SelectVoices()
	if status != nil {
		return status
	}
	status = r.writeVoices(voices)
	if status != nil {
		return status
	}
	return r.writeFile()
}

func (r *ExcelReport) setStyle() *log.Status {
	var err error
	r.styleId, err = r.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size:   12,
			Family: "Calibri",
			Color:  "#000000",
			Bold:   true,
		},
	})
	if err != nil {
		return log.Error(r.ctx, 500, err, "Failed to create new style.")
	}
	err = r.file.SetSheetName("Sheet1", jobsSheet)
	if err != nil {
		return log.Error(r.ctx, 500, err, "Failed to rename jobs sheet.")
	}
	for _, name := range []string{usageSheet, voicesSheet} {
		_, err = r.file.NewSheet(name)
		if err != nil {
			return log.Error(r.ctx, 500, err, "Failed to create sheet.", name)
		}
	}
	_ = r.file.SetColWidth(jobsSheet, "A", "B", 10)
	_ = r.file.SetColWidth(jobsSheet, "C", "F", 24)
	_ = r.file.SetColWidth(usageSheet, "A", "E", 12)
	_ = r.file.SetColWidth(usageSheet, "F", "H", 30)
	_ = r.file.SetColWidth(voicesSheet, "A", "A", 40)
	return nil
}

func (r *ExcelReport) writeJobs(jobs []db.JobRow) *log.Status {
	header := []string{"Job Id", "Job Name", "User", "Status", "Error", "Input File",
		"Duration", "Sample Rate", "Channels", "Output File", "Strategy", "Created", "Completed"}
	r.lineNum = 1
	status := r.writeHeader(jobsSheet, header)
	if status != nil {
		return status
	}
	for _, job := range jobs {
		r.lineNum += 1
		row := []any{job.JobID, job.JobName, job.Username, job.Status, job.ErrorMessage,
			job.InputFile, job.InputDuration, job.InputSampleRate, job.InputChannels,
			job.OutputFile, job.Strategy, job.CreatedAt, job.CompletedAt}
		status = r.writeRow(jobsSheet, row)
		if status != nil {
			return status
		}
	}
	return nil
}

func (r *ExcelReport) writeUsage(adapter *db.DBAdapter, jobs []db.JobRow) *log.Status {
	header := []string{"Job Id", "Start Sec", "End Sec", "Duration", "Gender", "Label",
		"Language", "Surrogate", "Surrogate Sec", "Strategy"}
	r.lineNum = 1
	status := r.writeHeader(usageSheet, header)
	if status != nil {
		return status
	}
	for _, job := range jobs {
		usage, status := adapter.SelectUsage(job.JobID)
		if status != nil {
			return status
		}
		for _, u := range usage {
			r.lineNum += 1
			row := []any{u.JobID, u.StartSec, u.EndSec, u.DurationSec, u.Gender, u.Label,
				u.Language, u.SurrogateName, u.SurrogateSeconds, u.Strategy}
			status = r.writeRow(usageSheet, row)
			if status != nil {
				return status
			}
		}
	}
	return nil
}

func (r *ExcelReport) writeVoices(voices []db.VoiceRow) *log.Status {
	header := []string{"Voice", "Usage Count", "Last Used"}
	r.lineNum = 1
	status := r.writeHeader(voicesSheet, header)
	if status != nil {
		return status
	}
	for _, voice := range voices {
		r.lineNum += 1
		row := []any{voice.Name, voice.UsageCount, voice.LastUsedAt}
		status = r.writeRow(voicesSheet, row)
		if status != nil {
			return status
		}
	}
	return nil
}

func (r *ExcelReport) writeHeader(sheet string, header []string) *log.Status {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	status := r.writeRow(sheet, row)
	if status != nil {
		return status
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return log.Error(r.ctx, 500, err, "Failed to compute header range.")
	}
	err = r.file.SetCellStyle(sheet, "A1", lastCol+"1", r.styleId)
	if err != nil {
		return log.Error(r.ctx, 500, err, "Failed to set header style.")
	}
	return nil
}

func (r *ExcelReport) writeRow(sheet string, values []any) *log.Status {
	cell := "A" + strconv.Itoa(r.lineNum)
	err := r.file.SetSheetRow(sheet, cell, &values)
	if err != nil {
		return log.Error(r.ctx, 500, err, "Unable to write row.")
	}
	return nil
}

func (r *ExcelReport) writeFile() *log.Status {
	err := r.file.SaveAs(r.filepath)
	if err != nil {
		return log.Error(r.ctx, 500, err, "Failed to save audit report")
	}
	return nil
}
