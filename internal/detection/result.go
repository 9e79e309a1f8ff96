package detection

import "math"

// Classification is the service's verdict on the voice.
type Classification string

const (
	ClassificationAI    Classification = "AI_GENERATED"
	ClassificationHuman Classification = "HUMAN"
)

// StatusSuccess is the status a healthy analysis reports.
const StatusSuccess = "success"

// Result is a successful analysis.
type Result struct {
	Classification  Classification `json:"classification"`
	ConfidenceScore float64        `json:"confidenceScore"`
	Language        string         `json:"language"`
	Status          string         `json:"status"`
	Explanation     string         `json:"explanation"`
}

// response is everything the endpoint may send back, success or not.
type response struct {
	Result
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// errorText picks the most specific error text the server sent.
func (r response) errorText() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Message
}

// IsAIGenerated reports whether the voice was judged synthetic. Anything
// other than AI_GENERATED counts as human.
func (r Result) IsAIGenerated() bool {
	return r.Classification == ClassificationAI
}

// ConfidencePercent returns the score as a rounded percentage in 0..100.
func (r Result) ConfidencePercent() int {
	score := r.ConfidenceScore
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return int(math.Round(score * 100))
}

// Label is the human readable verdict.
func (r Result) Label() string {
	if r.IsAIGenerated() {
		return "AI Generated"
	}
	return "Human Voice"
}
