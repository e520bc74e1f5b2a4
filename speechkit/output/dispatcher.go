package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/makeitchaccha/speechkit/speechkit/tts"
)

// ErrNoTargets is returned when Deliver is called with an empty target set.
var ErrNoTargets = errors.New("no delivery targets")

// Player is the external playback collaborator. Play blocks until playback
// finishes or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, artifact tts.Artifact) error
}

// Dispatcher delivers one artifact to a set of targets, best effort. A
// failure on one target never prevents delivery to the others; delivery
// order is the supplied order and there is no atomicity across targets.
type Dispatcher struct {
	stdout io.Writer
	player Player
	now    func() time.Time
}

// NewDispatcher creates a dispatcher writing stream targets to the process
// stdout. player may be nil when playback is not configured; Play targets
// then fail individually without affecting the rest.
func NewDispatcher(player Player) *Dispatcher {
	return &Dispatcher{
		stdout: os.Stdout,
		player: player,
		now:    time.Now,
	}
}

// Deliver fans the artifact out to every target in order and returns one
// result per target. The only returned error is ErrNoTargets; per-target
// failures live in the result list.
func (d *Dispatcher) Deliver(ctx context.Context, artifact tts.Artifact, targets []Target) ([]Result, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		results = append(results, d.deliverOne(ctx, artifact, target))
	}
	return results, nil
}

func (d *Dispatcher) deliverOne(ctx context.Context, artifact tts.Artifact, target Target) Result {
	res := Result{Kind: target.Kind()}

	switch t := target.(type) {
	case File:
		path := t.Path
		if path == "" {
			path = tts.TimestampFilename(d.now(), artifact.Format)
		}
		if err := writeFile(path, artifact.Data); err != nil {
			res.Err = err
			return res
		}
		res.Path = path

	case Bytes:
		res.Data = artifact.Data

	case Stream:
		if _, err := d.stdout.Write(artifact.Data); err != nil {
			res.Err = fmt.Errorf("write stdout: %w", err)
		}

	case Play:
		if d.player == nil {
			res.Err = errors.New("no playback device configured")
			return res
		}
		if err := d.player.Play(ctx, artifact); err != nil {
			res.Err = fmt.Errorf("playback: %w", err)
		}

	default:
		res.Err = fmt.Errorf("unsupported target kind %v", target.Kind())
	}
	return res
}

// writeFile is a scoped acquisition of the file resource; the handle is
// closed on every exit path and a close failure surfaces as the result
// error.
func writeFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
