package stego

// Op names the pipeline an [Event] belongs to.
type Op string

const (
	OpHide   Op = "hide"
	OpReveal Op = "reveal"
)

// Stage names a step in a pipeline.
type Stage string

const (
	// StageSealed follows encryption.  Bytes is the frame size.
	StageSealed Stage = "sealed"
	// StageEmbedded follows lsb.Embed.  Bits is the payload bit count and
	// Capacity the cover's payload capacity in bits.
	StageEmbedded Stage = "embedded"
	// StageExtracted follows lsb.Extract.  Bytes is the frame size.
	StageExtracted Stage = "extracted"
	// StageOpened follows decryption.  Bytes is the plaintext size.
	StageOpened Stage = "opened"
)

// Event describes one completed pipeline stage.
type Event struct {
	Op       Op
	Stage    Stage
	Bytes    int
	Bits     int
	Capacity int
}

// Usage returns the fraction of capacity consumed by the payload, or 0 when
// the event carries no capacity.
func (e Event) Usage() float64 {
	if e.Capacity == 0 {
		return 0
	}
	return float64(e.Bits) / float64(e.Capacity)
}

// Observer receives pipeline events.  Implementations must not retain or
// modify anything they are handed; they are called synchronously.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to [Observer].
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
