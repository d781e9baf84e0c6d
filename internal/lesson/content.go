package lesson

import "fmt"

// Content is the generated lesson document. Section pointers are nil when the
// section was not requested, so consumers get a presence contract per section.
type Content struct {
	LessonTitle string `json:"lessonTitle"`

	MainLessonPlan        *MainLessonPlan        `json:"mainLessonPlan,omitempty"`
	GuidedPractice        *GuidedPractice        `json:"guidedPractice,omitempty"`
	IndependentPractice   *IndependentPractice   `json:"independentPractice,omitempty"`
	LearningStations      []LearningStation      `json:"learningStations,omitempty"`
	SmallGroupInstruction *SmallGroupInstruction `json:"smallGroupInstruction,omitempty"`
	Tier2Intervention     *Tier2Intervention     `json:"tier2Intervention,omitempty"`
	Tier3Intervention     *Tier3Intervention     `json:"tier3Intervention,omitempty"`
}

// MainLessonPlan is the core teaching sequence.
type MainLessonPlan struct {
	Objective           string   `json:"objective"`
	Materials           []string `json:"materials"`
	AnticipatorySet     string   `json:"anticipatorySet"`
	DirectInstruction   string   `json:"directInstruction"`
	ModelingAndChecking string   `json:"modelingAndChecking"`
	Closure             string   `json:"closure"`
}

// GuidedPractice describes teacher-supported practice activities.
type GuidedPractice struct {
	Description               string   `json:"description"`
	Activities                []string `json:"activities"`
	DifferentiationStrategies []string `json:"differentiationStrategies"`
}

// IndependentPractice describes activities students complete on their own.
type IndependentPractice struct {
	Description        string   `json:"description"`
	Activities         []string `json:"activities"`
	AssessmentCriteria []string `json:"assessmentCriteria"`
}

// LearningStation is one rotation station.
type LearningStation struct {
	StationName  string   `json:"stationName"`
	Description  string   `json:"description"`
	Materials    []string `json:"materials"`
	Instructions string   `json:"instructions"`
	Duration     string   `json:"duration"`
}

// SmallGroupInstruction targets a focused skill in small groups.
type SmallGroupInstruction struct {
	GroupingStrategy string   `json:"groupingStrategy"`
	FocusArea        string   `json:"focusArea"`
	Activities       []string `json:"activities"`
	AssessmentMethod string   `json:"assessmentMethod"`
	Duration         string   `json:"duration"`
}

// Tier2Intervention describes targeted supplemental support.
type Tier2Intervention struct {
	TargetPopulation   string   `json:"targetPopulation"`
	InterventionGoal   string   `json:"interventionGoal"`
	Strategies         []string `json:"strategies"`
	Frequency          string   `json:"frequency"`
	ProgressMonitoring string   `json:"progressMonitoring"`
	Resources          []string `json:"resources"`
}

// Tier3Intervention describes intensive individualized support.
type Tier3Intervention struct {
	TargetPopulation    string   `json:"targetPopulation"`
	InterventionGoal    string   `json:"interventionGoal"`
	IntensiveStrategies []string `json:"intensiveStrategies"`
	Frequency           string   `json:"frequency"`
	DataCollection      string   `json:"dataCollection"`
	CollaborationPlan   string   `json:"collaborationPlan"`
	Resources           []string `json:"resources"`
}

// ValidateSections checks that every requested section is present in the
// parsed content.
func (c *Content) ValidateSections(requested SectionSet) error {
	if requested.MainLesson && c.MainLessonPlan == nil {
		return fmt.Errorf("missing mainLessonPlan section")
	}
	if requested.GuidedPractice && c.GuidedPractice == nil {
		return fmt.Errorf("missing guidedPractice section")
	}
	if requested.IndependentPractice && c.IndependentPractice == nil {
		return fmt.Errorf("missing independentPractice section")
	}
	if requested.LearningStations && len(c.LearningStations) == 0 {
		return fmt.Errorf("missing learningStations section")
	}
	if requested.SmallGroup && c.SmallGroupInstruction == nil {
		return fmt.Errorf("missing smallGroupInstruction section")
	}
	if requested.Tier2 && c.Tier2Intervention == nil {
		return fmt.Errorf("missing tier2Intervention section")
	}
	if requested.Tier3 && c.Tier3Intervention == nil {
		return fmt.Errorf("missing tier3Intervention section")
	}
	return nil
}
