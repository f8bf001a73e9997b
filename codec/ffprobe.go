package codec

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

type ProbeData struct {
	Format  ProbeFormat       `json:"format"`
	Streams []ProbeStreamInfo `json:"streams"`
}

type ProbeFormat struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
}

type ProbeStreamInfo struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// StreamInfo is the audio stream format needed to decode raw PCM.
type StreamInfo struct {
	SampleRate int
	Channels   int
}

// GetProbeData runs ffprobe on a file and parses its JSON output.
func GetProbeData(ctx context.Context, filePath string) (ProbeData, *log.Status) {
	var result ProbeData
	data, err := ffmpeg.Probe(filePath)
	if err != nil {
		return result, log.Error(ctx, 500, err, `Error probing audio file`, filePath)
	}
	err = json.Unmarshal([]byte(data), &result)
	if err != nil {
		return result, log.Error(ctx, 500, err, `Error parsing probe data`, filePath)
	}
	return result, nil
}

// ProbeStream returns the first audio stream's sample rate and channels.
func ProbeStream(ctx context.Context, filePath string) (StreamInfo, *log.Status) {
	var result StreamInfo
	probeData, status := GetProbeData(ctx, filePath)
	if status != nil {
		return result, status
	}
	for _, stream := range probeData.Streams {
		if stream.CodecType != `audio` {
			continue
		}
		rate, err := strconv.Atoi(strings.TrimSpace(stream.SampleRate))
		if err != nil || rate < 1 || stream.Channels < 1 {
			continue
		}
		result.SampleRate = rate
		result.Channels = stream.Channels
		return result, nil
	}
	return result, log.ErrorNoErr(ctx, 400, `No audio stream found`, filePath)
}

// GetAudioDuration returns a file's duration in seconds.
func GetAudioDuration(ctx context.Context, filePath string) (float64, *log.Status) {
	probeData, status := GetProbeData(ctx, filePath)
	if status != nil {
		return 0, status
	}
	text := strings.TrimSpace(probeData.Format.Duration)
	if text == `` {
		return 0, log.ErrorNoErr(ctx, 500, `Audio duration missing`, filePath)
	}
	duration, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, log.Error(ctx, 500, err, `Data conversion error in codec.GetAudioDuration`)
	}
	if duration <= 0 {
		return 0, log.ErrorNoErr(ctx, 500, `Invalid audio duration`, duration)
	}
	return duration, nil
}
