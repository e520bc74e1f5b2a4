package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"
)

var _ Engine = (*EdgeEngine)(nil)

// edgeVoices maps language codes to a default Edge voice. Callers can
// override the choice with the "voice" extension key.
var edgeVoices = map[string]string{
	"en": "en-US-AriaNeural",
	"de": "de-DE-KatjaNeural",
	"es": "es-ES-ElviraNeural",
	"fr": "fr-FR-DeniseNeural",
	"it": "it-IT-ElsaNeural",
	"ja": "ja-JP-NanamiNeural",
	"pt": "pt-BR-FranciscaNeural",
	"ru": "ru-RU-SvetlanaNeural",
	"zh": "zh-CN-XiaoxiaoNeural",
}

type edgeOptions struct {
	Voice string `mapstructure:"voice"`
}

// EdgeEngine synthesizes speech through the Microsoft Edge TTS service.
// Online; produces MP3. There is nothing to probe at construction time, so
// the engine is always available and network failures surface per call.
type EdgeEngine struct{}

func NewEdgeEngine() *EdgeEngine {
	return &EdgeEngine{}
}

func (e *EdgeEngine) Name() string {
	return "edge"
}

func (e *EdgeEngine) Available() bool {
	return true
}

func (e *EdgeEngine) Format() Format {
	return FormatMp3
}

func (e *EdgeEngine) Generate(ctx context.Context, text string, cfg Config) ([]byte, error) {
	var opts edgeOptions
	if err := mapstructure.WeakDecode(map[string]any(cfg), &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	voice := opts.Voice
	if voice == "" {
		voice = e.voiceFor(cfg.Language())
	}

	comm, err := edge.NewCommunicate(text, edge.WithVoice(voice))
	if err != nil {
		return nil, fmt.Errorf("create communicate: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	// Stream() delivers maps; entries with type=="audio" carry MP3 chunks.
	var buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				buf.Write(data)
			}
		}
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("no audio received for voice %q", voice)
	}
	return buf.Bytes(), nil
}

func (e *EdgeEngine) voiceFor(language string) string {
	if v, ok := edgeVoices[language]; ok {
		return v
	}
	return edgeVoices["en"]
}
