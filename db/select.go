package db

import (
	"database/sql"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

type JobRow struct {
	JobID           int64
	JobName         string
	Username        string
	Status          string
	ErrorMessage    string
	InputFile       string
	InputDuration   float64
	InputSampleRate int
	InputChannels   int
	OutputFile      string
	OutputDuration  float64
	Strategy        string
	CreatedAt       string
	CompletedAt     string
}

type UsageRow struct {
	JobID            int64
	StartSec         float64
	EndSec           float64
	DurationSec      float64
	Gender           string
	Label            string
	Language         string
	SurrogatePath    string
	SurrogateName    string
	SurrogateSeconds float64
	Strategy         string
}

type VoiceRow struct {
	Name       string
	UsageCount int64
	LastUsedAt string
}

// SelectJobs returns all processing jobs, most recent first.
func (d *DBAdapter) SelectJobs() ([]JobRow, *log.Status) {
	query := `SELECT job_id, job_name, IFNULL(username,''), status, IFNULL(error_message,''),
		IFNULL(input_file,''), IFNULL(input_duration,0), IFNULL(input_sample_rate,0),
		IFNULL(input_channels,0), IFNULL(output_file,''), IFNULL(output_duration,0),
		IFNULL(strategy,''), IFNULL(created_at,''), IFNULL(completed_at,'')
		FROM processing_jobs ORDER BY job_id DESC`
	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, log.Error(d.Ctx, 500, err, `Error selecting processing jobs`)
	}
	defer rows.Close()
	var results []JobRow
	for rows.Next() {
		var row JobRow
		err = rows.Scan(&row.JobID, &row.JobName, &row.Username, &row.Status, &row.ErrorMessage,
			&row.InputFile, &row.InputDuration, &row.InputSampleRate, &row.InputChannels,
			&row.OutputFile, &row.OutputDuration, &row.Strategy, &row.CreatedAt, &row.CompletedAt)
		if err != nil {
			return nil, log.Error(d.Ctx, 500, err, `Error scanning processing job`)
		}
		results = append(results, row)
	}
	return results, d.rowsError(rows)
}

// SelectUsage returns the surrogate usage rows for one job.
func (d *DBAdapter) SelectUsage(jobID int64) ([]UsageRow, *log.Status) {
	query := `SELECT job_id, start_sec, end_sec, duration_sec, IFNULL(gender,''), IFNULL(label,''),
		IFNULL(language,''), IFNULL(surrogate_path,''), IFNULL(surrogate_name,''),
		IFNULL(surrogate_seconds,0), IFNULL(strategy,'')
		FROM surrogate_usage WHERE job_id = ? ORDER BY start_sec`
	rows, err := d.DB.Query(query, jobID)
	if err != nil {
		return nil, log.Error(d.Ctx, 500, err, `Error selecting surrogate usage`)
	}
	defer rows.Close()
	var results []UsageRow
	for rows.Next() {
		var row UsageRow
		err = rows.Scan(&row.JobID, &row.StartSec, &row.EndSec, &row.DurationSec, &row.Gender,
			&row.Label, &row.Language, &row.SurrogatePath, &row.SurrogateName,
			&row.SurrogateSeconds, &row.Strategy)
		if err != nil {
			return nil, log.Error(d.Ctx, 500, err, `Error scanning surrogate usage`)
		}
		results = append(results, row)
	}
	return results, d.rowsError(rows)
}

// SelectVoices returns per-surrogate usage stats, most used first.
func (d *DBAdapter) SelectVoices() ([]VoiceRow, *log.Status) {
	query := `SELECT name, usage_count, IFNULL(last_used_at,'') FROM surrogate_voices
		ORDER BY usage_count DESC, name`
	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, log.Error(d.Ctx, 500, err, `Error selecting surrogate voices`)
	}
	defer rows.Close()
	var results []VoiceRow
	for rows.Next() {
		var row VoiceRow
		err = rows.Scan(&row.Name, &row.UsageCount, &row.LastUsedAt)
		if err != nil {
			return nil, log.Error(d.Ctx, 500, err, `Error scanning surrogate voice`)
		}
		results = append(results, row)
	}
	return results, d.rowsError(rows)
}

func (d *DBAdapter) rowsError(rows *sql.Rows) *log.Status {
	if err := rows.Err(); err != nil {
		return log.Error(d.Ctx, 500, err, `Error iterating rows`)
	}
	return nil
}
