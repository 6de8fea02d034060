package insight

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/medichat-ai/insights-engine/internal/lexicon"
)

// #region catalog

// catalog maps every emotion category to its first-choice strategy.
// CheckCatalog rejects a lexicon whose categories are not all covered.
var catalog = map[lexicon.Category]CopingStrategy{
	lexicon.Happy: {
		ID:                 "happy-gratitude",
		Title:              "Three Good Things",
		Description:        "Each evening, write down three things that went well and why. Revisit the list on harder days.",
		Category:           StrategyMindfulness,
		Effectiveness:      80,
		PersonalizedReason: "Recording what is going well helps a positive stretch last longer.",
	},
	lexicon.Sad: {
		ID:                 "mood-behavioral",
		Title:              "Gentle Movement Therapy",
		Description:        "Take a 10-minute walk or do light stretching. Physical movement can help lift mood naturally.",
		Category:           StrategyBehavioral,
		Effectiveness:      85,
		PersonalizedReason: "Based on your mood patterns, gentle physical activity can help improve emotional state.",
	},
	lexicon.Anxious: {
		ID:                 "anxiety-breathing",
		Title:              "Box Breathing for Anxiety",
		Description:        "Breathe in for 4, hold for 4, out for 4, hold for 4. Repeat 5 times when feeling anxious.",
		Category:           StrategyBreathing,
		Effectiveness:      90,
		PersonalizedReason: "Your anxiety patterns show this breathing technique would be particularly effective.",
	},
	lexicon.Angry: {
		ID:                 "anger-reframe",
		Title:              "Pause and Reframe",
		Description:        "When anger rises, step away for 90 seconds, name the trigger, then write one alternative reading of the situation.",
		Category:           StrategyCognitive,
		Effectiveness:      80,
		PersonalizedReason: "Frustration shows up often in your check-ins; a short pause gives you room to choose a response.",
	},
	lexicon.Neutral: {
		ID:                 "neutral-checkin",
		Title:              "Daily Mood Check-In",
		Description:        "Pick a fixed time each day to name how you feel in one word and rate it from 1 to 10.",
		Category:           StrategyMindfulness,
		Effectiveness:      75,
		PersonalizedReason: "Regular check-ins make subtle shifts in mood easier to notice.",
	},
	lexicon.Excited: {
		ID:                 "excited-savoring",
		Title:              "Mindful Savoring",
		Description:        "Spend two minutes describing what you are looking forward to in detail, then note one step you can take today.",
		Category:           StrategyMindfulness,
		Effectiveness:      75,
		PersonalizedReason: "Turning excitement into a concrete step keeps the energy from tipping into restlessness.",
	},
	lexicon.Lonely: {
		ID:                 "lonely-reach-out",
		Title:              "Reach Out to One Person",
		Description:        "Send a short message to one friend or family member today. It can be as simple as asking how their week is going.",
		Category:           StrategySocial,
		Effectiveness:      85,
		PersonalizedReason: "Feelings of isolation come up often for you; small moments of connection add up.",
	},
	lexicon.Confused: {
		ID:                 "confused-untangle",
		Title:              "Write It Out",
		Description:        "List what you know, what you don't know, and the one decision that matters most right now.",
		Category:           StrategyCognitive,
		Effectiveness:      80,
		PersonalizedReason: "Putting competing thoughts on paper helps separate what needs attention from what can wait.",
	},
	lexicon.Hopeful: {
		ID:                 "hopeful-small-goal",
		Title:              "Set One Small Goal",
		Description:        "Choose one goal you can finish this week and break it into three steps you can check off.",
		Category:           StrategyBehavioral,
		Effectiveness:      80,
		PersonalizedReason: "Your hopeful outlook is a good moment to turn intentions into small wins.",
	},
	lexicon.Tired: {
		ID:                 "tired-rest",
		Title:              "Rest and Recharge Routine",
		Description:        "Set a consistent wind-down time, dim screens an hour before bed, and plan one short break during the day.",
		Category:           StrategyBehavioral,
		Effectiveness:      80,
		PersonalizedReason: "Fatigue appears frequently in your messages, and steady rest supports emotional balance.",
	},
}

// universal strategies are appended after the category strategy.
var universal = []CopingStrategy{
	{
		ID:                 "breathing-basic",
		Title:              "4-7-8 Breathing Technique",
		Description:        "Inhale for 4 counts, hold for 7, exhale for 8. Repeat 4 times to activate your parasympathetic nervous system and reduce anxiety.",
		Category:           StrategyBreathing,
		Effectiveness:      85,
		PersonalizedReason: "Breathing exercises are universally effective for stress management and emotional regulation.",
	},
	{
		ID:                 "mindfulness-present",
		Title:              "5-4-3-2-1 Grounding",
		Description:        "Notice 5 things you see, 4 you can touch, 3 you hear, 2 you smell, 1 you taste. This brings you into the present moment.",
		Category:           StrategyMindfulness,
		Effectiveness:      80,
		PersonalizedReason: "Grounding techniques help manage overwhelming emotions by focusing on the present.",
	},
}

// #endregion catalog

// #region check

// CheckCatalog verifies every category has a valid strategy entry.
func CheckCatalog(categories []lexicon.Category) error {
	var errs []error
	for _, c := range categories {
		s, ok := catalog[c]
		if !ok {
			errs = append(errs, fmt.Errorf("no strategy for category %q", c))
			continue
		}
		if err := checkStrategy(s); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", c, err))
		}
	}
	for _, s := range universal {
		if err := checkStrategy(s); err != nil {
			errs = append(errs, fmt.Errorf("universal %q: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}

func checkStrategy(s CopingStrategy) error {
	switch {
	case s.ID == "":
		return errors.New("empty id")
	case s.Title == "":
		return errors.New("empty title")
	case !s.Category.Valid():
		return fmt.Errorf("unknown strategy category %q", s.Category)
	case s.Effectiveness < 0 || s.Effectiveness > 100:
		return fmt.Errorf("effectiveness %d out of range", s.Effectiveness)
	}
	return nil
}

// #endregion check

// #region framing

// reasonPrefix adapts the fallback personalizedReason to the preferred tone.
var reasonPrefix = map[string]string{
	"empathetic": "",
	"clinical":   "Indicated by your recent emotional pattern: ",
	"casual":     "Worth a try: ",
	"direct":     "Why: ",
}

func frame(s CopingStrategy, style string) CopingStrategy {
	prefix, ok := reasonPrefix[style]
	if !ok || prefix == "" {
		return s
	}
	r := []rune(s.PersonalizedReason)
	if len(r) > 0 {
		s.PersonalizedReason = prefix + string(unicode.ToLower(r[0])) + string(r[1:])
	}
	return s
}

// #endregion framing
