package ports

import (
	"context"
	"time"

	"github.com/leo4life/ethan-core/internal/domain/entities"
)

// Reply is the outcome of a generation call. An empty Text means the model
// chose to stay silent.
type Reply struct {
	Text       string
	WantsVoice bool
}

// Speech is a synthesized audio clip.
type Speech struct {
	Audio    []byte
	Duration time.Duration
}

// Generator is the opaque language-model capability: produce a reply for a
// transcript, distill new facts from one, and synthesize speech.
type Generator interface {
	// GenerateReply produces a reply for the transcript, given the current
	// instruction document and known facts.
	GenerateReply(ctx context.Context, transcript []entities.Message, instructions string, known entities.FactList) (*Reply, error)

	// ExtractFacts distills candidate fact statements from the transcript
	// that are not already covered by the known facts.
	ExtractFacts(ctx context.Context, transcript []entities.Message, known entities.FactList) ([]string, error)

	// SynthesizeSpeech converts text to audio. It returns (nil, nil) when
	// speech is unavailable, for example while rate-limited.
	SynthesizeSpeech(ctx context.Context, text string) (*Speech, error)
}
