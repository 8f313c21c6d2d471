package domain

import "time"

// TitleEntry is one candidate slide title. The index is assigned once and
// survives edits and reordering; only the generation request cares about it.
type TitleEntry struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// TitleInput is a title as submitted on save. Entries added by the user carry
// no index yet and receive the next value from the document's counter.
type TitleInput struct {
	Index *int   `json:"index"`
	Title string `json:"title"`
}

// TitleSet is the saved, ordered title list for one document. Replace
// semantics: a save overwrites the whole set.
type TitleSet struct {
	DocumentID string       `json:"document_id"`
	Entries    []TitleEntry `json:"entries"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Indexes returns the entry indexes in list order. This is the entire slide
// generation input besides the session handle; title text never travels.
func (s *TitleSet) Indexes() []int {
	out := make([]int, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e.Index)
	}
	return out
}

// TitleExtraction is the outcome of one ML extraction call: an opaque session
// handle plus titles indexed 0..N-1 in response order.
type TitleExtraction struct {
	SessionID string       `json:"ml_session_id"`
	Titles    []TitleEntry `json:"titles"`
}
