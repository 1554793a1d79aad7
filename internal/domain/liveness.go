package domain

// Challenge is a liveness instruction shown to the user. The value is the
// wire label echoed back by the client on the verify call.
type Challenge string

const (
	ChallengeBlink     Challenge = "Blink"
	ChallengeSmile     Challenge = "Smile"
	ChallengeLookLeft  Challenge = "Look Left"
	ChallengeLookRight Challenge = "Look Right"
)

// Challenges is the fixed issuance vocabulary.
var Challenges = []Challenge{
	ChallengeBlink,
	ChallengeSmile,
	ChallengeLookLeft,
	ChallengeLookRight,
}

// Valid reports whether c belongs to the vocabulary. Unknown labels are
// still accepted by the verifier; they simply never pass.
func (c Challenge) Valid() bool {
	for _, known := range Challenges {
		if c == known {
			return true
		}
	}
	return false
}

// Outcome is the result of evaluating one challenge against one still image.
// It is produced per call and never persisted by the verifier itself.
type Outcome struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score,omitempty"`   // EAR or turn ratio, when geometric
	Emotion string  `json:"emotion,omitempty"` // dominant emotion, when expression-based
	Reason  string  `json:"reason,omitempty"`
}

// EmotionAnalysis is the continuous-analysis result: the largest detected
// face box plus the capitalized dominant emotion, or "N/A" when nothing
// usable was found.
type EmotionAnalysis struct {
	Emotion string `json:"emotion"`
	Box     []int  `json:"box"`
}
