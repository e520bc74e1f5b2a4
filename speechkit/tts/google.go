package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/mitchellh/mapstructure"
)

var _ Engine = (*GoogleEngine)(nil)

// googleOptions are the extension keys the Google backend reads from a
// resolved Config. Unknown keys are ignored.
type googleOptions struct {
	Voice        string  `mapstructure:"voice"`
	SpeakingRate float64 `mapstructure:"speaking_rate"`
}

// GoogleEngine synthesizes speech through Google Cloud Text-to-Speech.
// Online; produces MP3.
type GoogleEngine struct {
	client *texttospeech.Client
}

// NewGoogleEngine wraps an authenticated Cloud TTS client. Use
// GoogleFactory to have the registry probe credentials lazily.
func NewGoogleEngine(client *texttospeech.Client) *GoogleEngine {
	return &GoogleEngine{client: client}
}

// GoogleFactory creates the client on first probe. Without usable
// credentials the constructor fails and the registry records the engine as
// unavailable; the error never escapes the probe.
func GoogleFactory(ctx context.Context) Factory {
	return func() (Engine, error) {
		client, err := texttospeech.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("google cloud credentials: %w", err)
		}
		return NewGoogleEngine(client), nil
	}
}

func (g *GoogleEngine) Name() string {
	return "google"
}

func (g *GoogleEngine) Available() bool {
	return g.client != nil
}

func (g *GoogleEngine) Format() Format {
	return FormatMp3
}

func (g *GoogleEngine) Generate(ctx context.Context, text string, cfg Config) ([]byte, error) {
	var opts googleOptions
	if err := mapstructure.WeakDecode(map[string]any(cfg), &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}

	speakingRate := opts.SpeakingRate
	if speakingRate == 0 {
		speakingRate = 1.0
	}
	if cfg.Slow() {
		speakingRate = 0.7
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: cfg.Language(),
			Name:         opts.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  speakingRate,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}

// Close releases the underlying client connection.
func (g *GoogleEngine) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
