// Package output fans a synthesized audio artifact out to one or more
// destinations with per-destination failure isolation.
package output

// Kind tags a delivery destination.
type Kind int

const (
	KindFile Kind = iota
	KindBytes
	KindStream
	KindPlay
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindBytes:
		return "bytes"
	case KindStream:
		return "stream"
	case KindPlay:
		return "play"
	default:
		return "unknown"
	}
}

// Target is a requested delivery destination. The concrete types below are
// the only implementations.
type Target interface {
	Kind() Kind
}

// File writes the artifact to Path. An empty Path is replaced by a
// timestamped filename carrying the artifact's declared extension.
type File struct {
	Path string
}

func (File) Kind() Kind { return KindFile }

// Bytes hands the artifact's byte sequence back verbatim in the result.
// No copy is made; callers must treat the data as read-only.
type Bytes struct{}

func (Bytes) Kind() Kind { return KindBytes }

// Stream writes the raw bytes to the process's standard output with no
// transformation, so the artifact can be piped into an external player.
type Stream struct{}

func (Stream) Kind() Kind { return KindStream }

// Play hands the bytes to the configured playback collaborator. Only
// whether the collaborator accepted the request propagates.
type Play struct{}

func (Play) Kind() Kind { return KindPlay }

// Result reports the outcome for one target. Exactly one of Path, Data is
// populated on success, depending on the target kind.
type Result struct {
	Kind Kind
	Path string // file targets: the path written
	Data []byte // bytes targets: the artifact data, verbatim
	Err  error
}

// Ok reports whether delivery to this target succeeded.
func (r Result) Ok() bool {
	return r.Err == nil
}
