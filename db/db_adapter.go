// Package db persists the processing-job audit trail and surrogate usage
// statistics. The core pipeline does not depend on it; the orchestrator
// records into it when a job requests auditing.
package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
	"github.com/Beijukabruno/audio-anonymization-platform/splice"
)

type DBAdapter struct {
	Ctx          context.Context
	DB           *sql.DB
	DatabasePath string
}

// NewDBAdapter opens (creating if needed) the audit database.
func NewDBAdapter(ctx context.Context, databasePath string) (DBAdapter, *log.Status) {
	var adapter DBAdapter
	adapter.Ctx = ctx
	adapter.DatabasePath = databasePath
	var err error
	adapter.DB, err = sql.Open(`sqlite3`, databasePath)
	if err != nil {
		return adapter, log.Error(ctx, 500, err, `Error opening audit database`, databasePath)
	}
	status := adapter.createTables()
	return adapter, status
}

func (d *DBAdapter) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

func (d *DBAdapter) createTables() *log.Status {
	var queries = []string{
		`CREATE TABLE IF NOT EXISTS processing_jobs (
			job_id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_name TEXT NOT NULL,
			username TEXT,
			status TEXT NOT NULL,
			error_message TEXT,
			input_file TEXT,
			input_duration REAL,
			input_sample_rate INTEGER,
			input_channels INTEGER,
			output_file TEXT,
			output_duration REAL,
			strategy TEXT,
			created_at TIMESTAMP,
			completed_at TIMESTAMP)`,
		`CREATE TABLE IF NOT EXISTS surrogate_usage (
			usage_id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id INTEGER NOT NULL,
			start_sec REAL,
			end_sec REAL,
			duration_sec REAL,
			gender TEXT,
			label TEXT,
			language TEXT,
			surrogate_path TEXT,
			surrogate_name TEXT,
			surrogate_seconds REAL,
			strategy TEXT,
			FOREIGN KEY(job_id) REFERENCES processing_jobs(job_id))`,
		`CREATE TABLE IF NOT EXISTS surrogate_voices (
			name TEXT PRIMARY KEY,
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used_at TIMESTAMP)`,
	}
	for _, query := range queries {
		_, err := d.DB.Exec(query)
		if err != nil {
			return log.Error(d.Ctx, 500, err, `Error creating audit tables`)
		}
	}
	return nil
}

// InsertJob records a new job in running state and returns its id.
func (d *DBAdapter) InsertJob(jobName string, username string, inputFile string, strategy string) (int64, *log.Status) {
	query := `INSERT INTO processing_jobs (job_name, username, status, input_file, strategy, created_at)
		VALUES (?, ?, 'running', ?, ?, ?)`
	result, err := d.DB.Exec(query, jobName, username, inputFile, strategy, time.Now())
	if err != nil {
		return 0, log.Error(d.Ctx, 500, err, `Error inserting processing job`)
	}
	jobID, err := result.LastInsertId()
	if err != nil {
		return 0, log.Error(d.Ctx, 500, err, `Error reading job id`)
	}
	return jobID, nil
}

// UpdateInputMetadata records the decoded input format.
func (d *DBAdapter) UpdateInputMetadata(jobID int64, duration float64, sampleRate int, channels int) *log.Status {
	query := `UPDATE processing_jobs SET input_duration = ?, input_sample_rate = ?, input_channels = ?
		WHERE job_id = ?`
	_, err := d.DB.Exec(query, duration, sampleRate, channels, jobID)
	if err != nil {
		return log.Error(d.Ctx, 500, err, `Error updating input metadata`)
	}
	return nil
}

// UpdateOutputMetadata records the encoded output.
func (d *DBAdapter) UpdateOutputMetadata(jobID int64, outputFile string, duration float64) *log.Status {
	query := `UPDATE processing_jobs SET output_file = ?, output_duration = ? WHERE job_id = ?`
	_, err := d.DB.Exec(query, outputFile, duration, jobID)
	if err != nil {
		return log.Error(d.Ctx, 500, err, `Error updating output metadata`)
	}
	return nil
}

// CompleteJob marks a job finished or failed.
func (d *DBAdapter) CompleteJob(jobID int64, errorMessage string) *log.Status {
	jobStatus := `completed`
	if errorMessage != `` {
		jobStatus = `failed`
	}
	query := `UPDATE processing_jobs SET status = ?, error_message = ?, completed_at = ? WHERE job_id = ?`
	_, err := d.DB.Exec(query, jobStatus, errorMessage, time.Now(), jobID)
	if err != nil {
		return log.Error(d.Ctx, 500, err, `Error completing processing job`)
	}
	return nil
}

// InsertUsage records the splice audit list and bumps per-surrogate stats.
func (d *DBAdapter) InsertUsage(jobID int64, records []splice.Record) *log.Status {
	query := `INSERT INTO surrogate_usage (job_id, start_sec, end_sec, duration_sec, gender, label,
		language, surrogate_path, surrogate_name, surrogate_seconds, strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, rec := range records {
		_, err := d.DB.Exec(query, jobID, rec.StartSec, rec.EndSec, rec.DurationSec, rec.Gender,
			rec.Label, rec.Language, rec.SurrogatePath, rec.SurrogateName, rec.SurrogateSeconds,
			string(rec.Strategy))
		if err != nil {
			return log.Error(d.Ctx, 500, err, `Error inserting surrogate usage`)
		}
		status := d.updateSurrogateStats(rec.SurrogateName)
		if status != nil {
			return status
		}
	}
	return nil
}

func (d *DBAdapter) updateSurrogateStats(surrogateName string) *log.Status {
	query := `INSERT INTO surrogate_voices (name, usage_count, last_used_at) VALUES (?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET usage_count = usage_count + 1, last_used_at = excluded.last_used_at`
	_, err := d.DB.Exec(query, surrogateName, time.Now())
	if err != nil {
		return log.Error(d.Ctx, 500, err, `Error updating surrogate stats`)
	}
	return nil
}
