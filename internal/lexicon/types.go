package lexicon

// #region category

// Category is one label from the closed set of detectable emotions.
type Category string

const (
	Happy    Category = "happy"
	Sad      Category = "sad"
	Anxious  Category = "anxious"
	Angry    Category = "angry"
	Neutral  Category = "neutral"
	Excited  Category = "excited"
	Lonely   Category = "lonely"
	Confused Category = "confused"
	Hopeful  Category = "hopeful"
	Tired    Category = "tired"
)

// AllCategories is the canonical category ordering. Tie-breaks in the
// classifier and the statistics aggregator resolve in this order.
var AllCategories = []Category{
	Happy, Sad, Anxious, Angry, Neutral, Excited, Lonely, Confused, Hopeful, Tired,
}

// Valid reports whether c belongs to the closed enumeration.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// #endregion category

// #region phrase-group

// PhraseGroup names a set of crisis phrases. The name is what gets surfaced
// in assessment factors, never the matched user text.
type PhraseGroup struct {
	Name    string   `json:"name"`
	Phrases []string `json:"phrases"`
}

// #endregion phrase-group

// #region file-format

// fileCategory is one category entry in a lexicon JSON file.
type fileCategory struct {
	Name     Category `json:"name"`
	Weight   float64  `json:"weight"`
	Negative bool     `json:"negative"`
	Keywords []string `json:"keywords"`
}

// fileLexicon is the on-disk shape accepted by LoadFile.
type fileLexicon struct {
	Categories     []fileCategory `json:"categories"`
	CrisisPhrases  []PhraseGroup  `json:"crisis_phrases"`
	ConcernPhrases []string       `json:"concern_phrases"`
}

// #endregion file-format
