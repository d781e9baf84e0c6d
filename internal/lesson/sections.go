package lesson

// SectionSet selects which content sections a generation request produces.
type SectionSet struct {
	MainLesson          bool
	GuidedPractice      bool
	IndependentPractice bool
	LearningStations    bool
	SmallGroup          bool
	Tier2               bool
	Tier3               bool
}

// DefaultSections enables the three core sections.
func DefaultSections() SectionSet {
	return SectionSet{
		MainLesson:          true,
		GuidedPractice:      true,
		IndependentPractice: true,
	}
}

// extendedSectionSubjects are the subjects eligible for stations, small-group,
// and tiered-intervention sections.
var extendedSectionSubjects = map[string]bool{
	SubjectMathematics:         true,
	SubjectEnglishLanguageArts: true,
	SubjectAdvancedMathematics: true,
}

// AllowsExtendedSections reports whether the subject may carry the optional
// stations, small-group, and tier sections.
func AllowsExtendedSections(subject string) bool {
	return extendedSectionSubjects[subject]
}

// Normalize drops extended sections for subjects that do not support them.
func (s SectionSet) Normalize(subject string) SectionSet {
	if AllowsExtendedSections(subject) {
		return s
	}
	s.LearningStations = false
	s.SmallGroup = false
	s.Tier2 = false
	s.Tier3 = false
	return s
}

// Any reports whether at least one section is selected.
func (s SectionSet) Any() bool {
	return s.MainLesson || s.GuidedPractice || s.IndependentPractice ||
		s.LearningStations || s.SmallGroup || s.Tier2 || s.Tier3
}
