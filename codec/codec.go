// Package codec is the container/codec collaborator boundary: it decodes
// audio files into float PCM buffers and encodes buffers back, delegating
// demuxing and codecs to ffmpeg. Nothing in the core pipeline touches a
// file format directly.
package codec

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Beijukabruno/audio-anonymization-platform/audio"
	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// supportedFormats are the container formats accepted for decoding.
var supportedFormats = map[string]bool{
	`wav`: true, `mp3`: true, `flac`: true, `ogg`: true, `m4a`: true,
}

// IsSupported reports whether the file extension is a decodable format.
func IsSupported(filePath string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), `.`))
	return supportedFormats[ext]
}

// Decode reads an audio file into an interleaved float64 buffer in [-1, 1].
func Decode(ctx context.Context, filePath string) (audio.Buffer, *log.Status) {
	var result audio.Buffer
	if !IsSupported(filePath) {
		return result, log.ErrorNoErr(ctx, 400, `Unsupported input format`, filePath)
	}
	info, status := ProbeStream(ctx, filePath)
	if status != nil {
		return result, status
	}
	cmd := exec.CommandContext(ctx, `ffmpeg`,
		`-i`, filePath,
		`-f`, `f64le`,
		`-acodec`, `pcm_f64le`,
		`-`)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return result, log.Error(ctx, 500, err, `Error decoding audio`, filePath, stderr.String())
	}
	raw := stdout.Bytes()
	samples := make([]float64, len(raw)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(raw[i*8:])
		samples[i] = math.Float64frombits(bits)
	}
	// drop any ragged tail so the sample count is whole frames
	samples = samples[:len(samples)/info.Channels*info.Channels]
	result = audio.Buffer{Samples: samples, SampleRate: info.SampleRate, Channels: info.Channels}
	log.Info(ctx, `Decoded`, filePath, result.Frames(), `frames at`, result.SampleRate, `Hz`)
	return result, nil
}

// Encode writes a buffer to an audio file; the container format follows
// the output path's extension.
func Encode(ctx context.Context, buffer audio.Buffer, outPath string) *log.Status {
	if buffer.Channels < 1 || buffer.SampleRate < 1 {
		return log.ErrorNoErr(ctx, 400, `Buffer has no format`, outPath)
	}
	raw := make([]byte, len(buffer.Samples)*8)
	for i, sample := range buffer.Samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(sample))
	}
	cmd := exec.CommandContext(ctx, `ffmpeg`,
		`-f`, `f64le`,
		`-ar`, strconv.Itoa(buffer.SampleRate),
		`-ac`, strconv.Itoa(buffer.Channels),
		`-i`, `-`,
		`-y`,
		outPath)
	cmd.Stdin = bytes.NewReader(raw)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return log.Error(ctx, 500, err, `Error encoding audio`, outPath, stderr.String())
	}
	log.Info(ctx, `Encoded`, outPath, buffer.Seconds(), `seconds`)
	return nil
}

// Loader adapts Decode to the splicing engine's ClipLoader capability.
type Loader struct{}

// Load decodes a surrogate clip from the local filesystem.
func (l Loader) Load(ctx context.Context, path string) (audio.Buffer, *log.Status) {
	return Decode(ctx, path)
}
