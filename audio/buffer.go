// Package audio holds decoded PCM in memory and provides the format
// operations the splicing engine needs: slicing by time, resampling,
// and channel conversion. All operations return new buffers.
package audio

import "math"

// Buffer is interleaved PCM with samples in [-1, 1].
type Buffer struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// NewSilence returns a buffer of the given number of frames of silence.
func NewSilence(frames int, sampleRate int, channels int) Buffer {
	if frames < 0 {
		frames = 0
	}
	return Buffer{
		Samples:    make([]float64, frames*channels),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Frames returns the number of sample frames in the buffer.
func (b Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Seconds returns the buffer duration in seconds.
func (b Buffer) Seconds() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// FrameAt converts a time in seconds to a frame index, clamped to the buffer.
func (b Buffer) FrameAt(seconds float64) int {
	frame := int(math.Round(seconds * float64(b.SampleRate)))
	if frame < 0 {
		frame = 0
	}
	if frame > b.Frames() {
		frame = b.Frames()
	}
	return frame
}

// SliceFrames returns a copy of frames [from, to).
func (b Buffer) SliceFrames(from int, to int) Buffer {
	if from < 0 {
		from = 0
	}
	if to > b.Frames() {
		to = b.Frames()
	}
	if to < from {
		to = from
	}
	samples := make([]float64, (to-from)*b.Channels)
	copy(samples, b.Samples[from*b.Channels:to*b.Channels])
	return Buffer{Samples: samples, SampleRate: b.SampleRate, Channels: b.Channels}
}

// SliceSeconds returns a copy of the audio between two times.
func (b Buffer) SliceSeconds(from float64, to float64) Buffer {
	return b.SliceFrames(b.FrameAt(from), b.FrameAt(to))
}

// Append returns the concatenation of b and other. The two buffers must
// already share a sample rate and channel count.
func (b Buffer) Append(other Buffer) Buffer {
	samples := make([]float64, 0, len(b.Samples)+len(other.Samples))
	samples = append(samples, b.Samples...)
	samples = append(samples, other.Samples...)
	return Buffer{Samples: samples, SampleRate: b.SampleRate, Channels: b.Channels}
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	samples := make([]float64, len(b.Samples))
	copy(samples, b.Samples)
	return Buffer{Samples: samples, SampleRate: b.SampleRate, Channels: b.Channels}
}

// Mono averages all channels down to one.
func (b Buffer) Mono() Buffer {
	if b.Channels <= 1 {
		return b.Clone()
	}
	frames := b.Frames()
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < b.Channels; c++ {
			sum += b.Samples[i*b.Channels+c]
		}
		samples[i] = sum / float64(b.Channels)
	}
	return Buffer{Samples: samples, SampleRate: b.SampleRate, Channels: 1}
}

// Channel extracts one channel as a contiguous slice.
func (b Buffer) Channel(ch int) []float64 {
	frames := b.Frames()
	samples := make([]float64, frames)
	if ch < 0 || ch >= b.Channels {
		return samples
	}
	for i := 0; i < frames; i++ {
		samples[i] = b.Samples[i*b.Channels+ch]
	}
	return samples
}

// FromChannels interleaves per-channel slices into a buffer. All channels
// must have the same length.
func FromChannels(channels [][]float64, sampleRate int) Buffer {
	if len(channels) == 0 {
		return Buffer{SampleRate: sampleRate, Channels: 1}
	}
	frames := len(channels[0])
	samples := make([]float64, frames*len(channels))
	for c, chn := range channels {
		for i := 0; i < frames && i < len(chn); i++ {
			samples[i*len(channels)+c] = chn[i]
		}
	}
	return Buffer{Samples: samples, SampleRate: sampleRate, Channels: len(channels)}
}

// SetChannels converts the buffer to the given channel count. Reducing
// channels averages them; increasing duplicates the channel means.
func (b Buffer) SetChannels(channels int) Buffer {
	if channels == b.Channels || channels < 1 {
		return b.Clone()
	}
	mono := b.Mono()
	if channels == 1 {
		return mono
	}
	frames := mono.Frames()
	samples := make([]float64, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = mono.Samples[i]
		}
	}
	return Buffer{Samples: samples, SampleRate: b.SampleRate, Channels: channels}
}

// SetSampleRate converts the buffer to a new sample rate by per-channel
// linear interpolation. This is a format match for splicing, not a
// quality-critical transform; the disguise chain has its own resamplers.
func (b Buffer) SetSampleRate(sampleRate int) Buffer {
	if sampleRate == b.SampleRate || b.SampleRate == 0 || sampleRate < 1 {
		result := b.Clone()
		if sampleRate >= 1 {
			result.SampleRate = sampleRate
		}
		return result
	}
	inFrames := b.Frames()
	outFrames := int(math.Round(float64(inFrames) * float64(sampleRate) / float64(b.SampleRate)))
	samples := make([]float64, outFrames*b.Channels)
	if inFrames == 0 {
		return Buffer{Samples: samples, SampleRate: sampleRate, Channels: b.Channels}
	}
	ratio := float64(b.SampleRate) / float64(sampleRate)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		left := int(pos)
		if left >= inFrames-1 {
			left = inFrames - 1
		}
		right := left + 1
		if right >= inFrames {
			right = inFrames - 1
		}
		frac := pos - float64(left)
		for c := 0; c < b.Channels; c++ {
			lo := b.Samples[left*b.Channels+c]
			hi := b.Samples[right*b.Channels+c]
			samples[i*b.Channels+c] = lo + (hi-lo)*frac
		}
	}
	return Buffer{Samples: samples, SampleRate: sampleRate, Channels: b.Channels}
}

// FitFrames trims or right-pads the buffer with silence to exactly the
// given number of frames.
func (b Buffer) FitFrames(frames int) Buffer {
	if frames < 0 {
		frames = 0
	}
	current := b.Frames()
	if current == frames {
		return b.Clone()
	}
	if current > frames {
		return b.SliceFrames(0, frames)
	}
	return b.Append(NewSilence(frames-current, b.SampleRate, b.Channels))
}
