package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/hajimehoshi/go-mp3"

	"github.com/makeitchaccha/speechkit/speechkit/tts"
)

var _ Player = (*DevicePlayer)(nil)

// DevicePlayer plays artifacts through the default audio device via
// miniaudio. The audio context is shared; each Play call opens its own
// device configured for that artifact's sample rate.
type DevicePlayer struct {
	ctx    *malgo.AllocatedContext
	mu     sync.Mutex
	closed bool
}

// NewDevicePlayer initializes the audio context. Fails on headless systems
// without an audio backend; callers should treat that as playback being
// unavailable, not as a fatal error.
func NewDevicePlayer() (*DevicePlayer, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &DevicePlayer{ctx: ctx}, nil
}

// Play decodes the artifact and blocks until playback completes or ctx is
// cancelled.
func (p *DevicePlayer) Play(ctx context.Context, artifact tts.Artifact) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("player closed")
	}
	p.mu.Unlock()

	audio, err := decodeArtifact(artifact)
	if err != nil {
		return err
	}
	if len(audio.data) == 0 {
		return nil
	}

	pos := 0
	done := make(chan struct{})

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(audio.channels)
	deviceConfig.SampleRate = uint32(audio.sampleRate)
	deviceConfig.PeriodSizeInFrames = 512
	deviceConfig.Periods = 2

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, _ []byte, frameCount uint32) {
			bytesNeeded := int(frameCount) * audio.channels * 2
			if pos >= len(audio.data) {
				for i := range outputSamples[:bytesNeeded] {
					outputSamples[i] = 0
				}
				select {
				case done <- struct{}{}:
				default:
				}
				return
			}

			end := pos + bytesNeeded
			if end > len(audio.data) {
				end = len(audio.data)
			}
			copy(outputSamples, audio.data[pos:end])
			for i := end - pos; i < bytesNeeded; i++ {
				outputSamples[i] = 0
			}
			pos = end
		},
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("init playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("start playback device: %w", err)
	}
	defer device.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Close releases the audio context.
func (p *DevicePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}

// decodeArtifact turns an artifact into raw S16LE samples using the
// declared format hint. MP3 goes through go-mp3 (which always outputs
// stereo 16-bit LE); WAV is parsed in place.
func decodeArtifact(artifact tts.Artifact) (pcmAudio, error) {
	switch artifact.Format {
	case tts.FormatMp3:
		decoder, err := mp3.NewDecoder(bytes.NewReader(artifact.Data))
		if err != nil {
			return pcmAudio{}, fmt.Errorf("decode mp3: %w", err)
		}
		pcm, err := io.ReadAll(decoder)
		if err != nil {
			return pcmAudio{}, fmt.Errorf("read mp3 samples: %w", err)
		}
		return pcmAudio{data: pcm, sampleRate: decoder.SampleRate(), channels: 2}, nil
	case tts.FormatWav:
		return parseWav(artifact.Data)
	default:
		return pcmAudio{}, fmt.Errorf("cannot play artifact with unknown format")
	}
}
