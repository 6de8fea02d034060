package classifier

// #region config

// Config holds the scoring constants for keyword classification.
type Config struct {
	LongKeywordLen     int // keywords with more runes than this count LongKeywordWeight
	LongKeywordWeight  int
	FloorConfidence    int // confidence when nothing matched
	MinMatchConfidence int // lower clamp when at least one category matched
	MaxConfidence      int
	Workers            int // ClassifyBatch fan-out limit
}

// DefaultConfig returns the production scoring constants.
func DefaultConfig() Config {
	return Config{
		LongKeywordLen:     4,
		LongKeywordWeight:  2,
		FloorConfidence:    70,
		MinMatchConfidence: 75,
		MaxConfidence:      95,
		Workers:            8,
	}
}

// #endregion config
