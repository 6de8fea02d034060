package crisis

// #region risk-level

// RiskLevel is the ordinal crisis tier.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity orders tiers for comparison: low=0 .. critical=3.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// #endregion risk-level

// #region assessment

// Assessment is computed per request and never cached.
type Assessment struct {
	RiskLevel       RiskLevel `json:"riskLevel"`
	Score           int       `json:"score"`
	Factors         []string  `json:"factors"`
	Recommendations []string  `json:"recommendations"`
	Urgent          bool      `json:"urgent"`
}

// #endregion assessment

// #region config

// Config holds the scoring constants. These were chosen empirically, not
// calibrated against a clinical scale.
type Config struct {
	MaxWindow int // most recent messages considered

	EmptyScore         int
	CrisisPoints       int // per matched high-severity phrase
	ConcernPoints      int // per distinct matched concern phrase
	MaxConcernFactors  int
	NegativePoints     int
	NegativeShareAbove float64 // fraction of the window, exclusive

	CriticalAt int
	HighAt     int
	MediumAt   int

	EmptyRecommendations    []string
	LowRecommendations      []string
	MediumRecommendations   []string
	HighRecommendations     []string
	CriticalRecommendations []string
}

// DefaultConfig returns the production thresholds and US resource lists.
func DefaultConfig() Config {
	return Config{
		MaxWindow: 20,

		EmptyScore:         10,
		CrisisPoints:       20,
		ConcernPoints:      5,
		MaxConcernFactors:  5,
		NegativePoints:     15,
		NegativeShareAbove: 0.8,

		CriticalAt: 40,
		HighAt:     25,
		MediumAt:   15,

		EmptyRecommendations: []string{
			"Continue regular check-ins to keep track of how you are feeling",
		},
		LowRecommendations: []string{
			"Continue regular self-care practices",
			"Maintain healthy routines",
			"Stay connected with your support network",
			"Keep checking in for ongoing support",
		},
		MediumRecommendations: []string{
			"Schedule an appointment with a mental health professional",
			"Practice coping strategies regularly",
			"Maintain connection with your support network",
			"Monitor your mood and seek help if things get worse",
		},
		HighRecommendations: []string{
			"Contact a mental health professional today",
			"Call or text the 988 Suicide & Crisis Lifeline",
			"Reach out to someone in your trusted support network",
			"Consider crisis counseling services",
		},
		CriticalRecommendations: []string{
			"Contact emergency services (911) immediately",
			"Call or text the 988 Suicide & Crisis Lifeline",
			"Reach out to a trusted friend or family member now",
			"Go to your nearest emergency room",
		},
	}
}

// #endregion config
