// Command anonymize runs speech anonymization jobs from YAML request
// files, probes media files, and exports audit reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Beijukabruno/audio-anonymization-platform/anonymize"
	"github.com/Beijukabruno/audio-anonymization-platform/codec"
	"github.com/Beijukabruno/audio-anonymization-platform/db"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
	"github.com/Beijukabruno/audio-anonymization-platform/report"
	"github.com/Beijukabruno/audio-anonymization-platform/request"
)

var version = "0.1.0"

type Globals struct {
	LogOutput string           `default:"stderr" help:"Log destination: stderr, stdout, or a file path"`
	Version   kong.VersionFlag `short:"v" help:"Show version information"`
}

type RunCmd struct {
	Request string `arg:"" type:"existingfile" help:"YAML job request file"`
}

func (r *RunCmd) Run(globals *Globals) error {
	ctx := context.Background()
	decoder := request.NewRequestDecoder(ctx)
	req, status := decoder.ProcessFile(r.Request)
	if status != nil {
		return errors.New(status.Error())
	}
	ctx = log.SetRequest(ctx, req.JobName)
	anonymizer, status := anonymize.NewAnonymizer(ctx, req)
	if status != nil {
		return errors.New(status.Error())
	}
	result, status := anonymizer.Run()
	if status != nil {
		return errors.New(status.Error())
	}
	fmt.Println(`wrote`, result.OutputFile)
	for _, rec := range result.Records {
		fmt.Printf("  %.2f-%.2f sec <- %s\n", rec.StartSec, rec.EndSec, rec.SurrogateName)
	}
	return nil
}

type ProbeCmd struct {
	File string `arg:"" type:"existingfile" help:"Media file to probe"`
}

func (p *ProbeCmd) Run(globals *Globals) error {
	ctx := context.Background()
	info, status := codec.ProbeStream(ctx, p.File)
	if status != nil {
		return errors.New(status.Error())
	}
	duration, status := codec.GetAudioDuration(ctx, p.File)
	if status != nil {
		return errors.New(status.Error())
	}
	fmt.Printf("%s: %d Hz, %d ch, %.2f sec\n", p.File, info.SampleRate, info.Channels, duration)
	return nil
}

type ReportCmd struct {
	AuditDB string `arg:"" type:"existingfile" help:"Audit database path"`
	Output  string `arg:"" optional:"" help:"Output .xlsx path" default:"audit_report.xlsx"`
}

func (r *ReportCmd) Run(globals *Globals) error {
	ctx := context.Background()
	adapter, status := db.NewDBAdapter(ctx, r.AuditDB)
	if status != nil {
		return errors.New(status.Error())
	}
	defer adapter.Close()
	rpt := report.NewExcelReport(ctx, r.Output)
	status = rpt.Generate(&adapter)
	if status != nil {
		return errors.New(status.Error())
	}
	fmt.Println(`wrote`, r.Output)
	return nil
}

type CLI struct {
	Globals

	Run    RunCmd    `cmd:"" help:"Run an anonymization job from a YAML request"`
	Probe  ProbeCmd  `cmd:"" help:"Show stream info for a media file"`
	Report ReportCmd `cmd:"" help:"Export the audit database to Excel"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("anonymize"),
		kong.Description("Speech anonymization: surrogate voice splicing and voice disguise"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	log.SetOutput(cli.LogOutput)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
