package domain

// DeniedAnswerText is returned verbatim when the caller's role resolves to
// an empty accessible set. It is a normal answer, not an error.
const DeniedAnswerText = "Your role does not have access to any data."

// RetrievedChunk is one ranked retrieval hit.
type RetrievedChunk struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	ContentRole string   `json:"content_role"`
	SourceName  string   `json:"source_name"`
	SectionPath []string `json:"section_path,omitempty"`
	Score       float64  `json:"score"`
}

type Answer struct {
	Text    string           `json:"text"`
	Denied  bool             `json:"denied"`
	Sources []RetrievedChunk `json:"sources,omitempty"`
}

// DeniedAnswer builds the fixed access-denial answer.
func DeniedAnswer() *Answer {
	return &Answer{Text: DeniedAnswerText, Denied: true}
}
