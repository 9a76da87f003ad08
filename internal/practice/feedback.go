package practice

import "fmt"

// Kind tags a Feedback value.
type Kind int

const (
	None Kind = iota
	Match
	Mismatch
	CapabilityUnavailable
	PlaybackError
	RecognitionError
)

func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case CapabilityUnavailable:
		return "capability_unavailable"
	case PlaybackError:
		return "playback_error"
	case RecognitionError:
		return "recognition_error"
	default:
		return "none"
	}
}

// Capability names the speech feature a CapabilityUnavailable refers to.
type Capability string

const (
	Synthesis   Capability = "synthesis"
	Recognition Capability = "recognition"
)

// Feedback is the result of one practice attempt. Only the fields that
// belong to Kind are set.
type Feedback struct {
	Kind       Kind
	Heard      string     // Mismatch
	Code       string     // RecognitionError
	Capability Capability // CapabilityUnavailable
}

func matched() Feedback { return Feedback{Kind: Match} }

func mismatched(heard string) Feedback { return Feedback{Kind: Mismatch, Heard: heard} }

func unavailable(c Capability) Feedback {
	return Feedback{Kind: CapabilityUnavailable, Capability: c}
}

func playbackFailed() Feedback { return Feedback{Kind: PlaybackError} }

func recognitionFailed(code string) Feedback {
	return Feedback{Kind: RecognitionError, Code: code}
}

// Message is the text shown to the learner.
func (f Feedback) Message() string {
	switch f.Kind {
	case Match:
		return "Correct! Great job!"
	case Mismatch:
		return fmt.Sprintf("We heard: %q. Try again!", f.Heard)
	case CapabilityUnavailable:
		if f.Capability == Synthesis {
			return "Sorry, speech playback is not available on this system."
		}
		return "Sorry, speech recognition is not available on this system."
	case PlaybackError:
		return "Sorry, couldn't play the audio."
	case RecognitionError:
		return fmt.Sprintf("Error in recognition: %s", f.Code)
	default:
		return ""
	}
}
