package lesson

import "strings"

// NoteIntent classifies what a teacher's free-text notes are asking for.
type NoteIntent int

const (
	// IntentNone means the notes carry no recognized request.
	IntentNone NoteIntent = iota
	// IntentStory asks for a narrative story woven through the lesson.
	IntentStory
	// IntentMathProblem asks for word problems built around a context.
	IntentMathProblem
	// IntentScenario asks for a factual or real-world scenario.
	IntentScenario
)

// String returns the intent name.
func (i NoteIntent) String() string {
	switch i {
	case IntentStory:
		return "story"
	case IntentMathProblem:
		return "math_problem"
	case IntentScenario:
		return "scenario"
	default:
		return "none"
	}
}

var (
	storyKeywords = []string{
		"story", "narrative", "tale", "character", "adventure", "cuento", "historia",
	}
	mathProblemKeywords = []string{
		"word problem", "math problem", "problems about", "problema", "calculation",
	}
	scenarioKeywords = []string{
		"scenario", "real-world", "real world", "situation", "fact", "facts about", "example about",
	}
)

// ClassifyNotes maps free-text teacher notes to a closed intent. Empty or
// unrecognized notes classify as IntentNone. Matching is keyword-based and
// checks the more specific math-problem phrasing before the story keywords.
func ClassifyNotes(notes string) NoteIntent {
	normalized := strings.ToLower(strings.TrimSpace(notes))
	if normalized == "" {
		return IntentNone
	}
	for _, keyword := range mathProblemKeywords {
		if strings.Contains(normalized, keyword) {
			return IntentMathProblem
		}
	}
	for _, keyword := range storyKeywords {
		if strings.Contains(normalized, keyword) {
			return IntentStory
		}
	}
	for _, keyword := range scenarioKeywords {
		if strings.Contains(normalized, keyword) {
			return IntentScenario
		}
	}
	return IntentNone
}
