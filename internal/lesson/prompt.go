package lesson

import (
	"fmt"
	"strings"

	"github.com/edu-smartai/edusmartai/internal/models"
)

// SystemPrompt is the fixed system instruction for every generation call.
const SystemPrompt = "You are an expert K-12 educator and curriculum designer specializing in " +
	"Texas TEKS standards. Generate comprehensive, practical lesson plans in valid JSON format " +
	"only. Do not include any text before or after the JSON."

// languageInstructions selects the language-mode block for the prompt.
var languageInstructions = map[string]string{
	models.LanguageEnglish: "Generate all content in English only.",
	models.LanguageSpanish: "Generate all content in Spanish only. All sections, instructions, " +
		"activities, and materials should be in Spanish.",
	models.LanguageBilingual: `Generate all content in BILINGUAL format (English and Spanish side-by-side).

BILINGUAL FORMATTING RULES:
- For each section, provide BOTH English and Spanish versions using:
  [EN]: English text here
  [ES]: Spanish text here
- For lists, provide bilingual items as "English item / Spanish item".
- Spanish translations must be culturally appropriate for Texas Hispanic students,
  pedagogically sound rather than literal, and use academic Spanish terms.
- For materials lists, use the format "Material name (Nombre del material)".
- Keep TEKS standard codes in English but explain them in both languages.`,
}

// storyComplexity maps each grade to an age-appropriate writing descriptor.
var storyComplexity = map[string]string{
	"K": "kindergarten level (very simple sentences, 3-5 words per sentence, basic vocabulary)",
	"1": "1st grade level (simple sentences, 5-8 words per sentence, basic sight words)",
	"2": "2nd grade level (simple to moderate sentences, 8-12 words per sentence)",
	"3": "3rd grade level (moderate complexity, 10-15 words per sentence, expanding vocabulary)",
	"4": "4th grade level (moderate complexity with some complex sentences, varied vocabulary)",
	"5": "5th grade level (varied sentence complexity, academic vocabulary)",
	"6": "6th grade level (complex sentences, academic and subject-specific vocabulary)",
	"7": "7th grade level (sophisticated vocabulary, varied sentence structures)",
	"8": "8th grade level (advanced vocabulary, complex sentence structures)",
}

// StoryComplexity returns the writing descriptor for a grade, defaulting to
// the 4th grade descriptor for unknown grades.
func StoryComplexity(grade string) string {
	if descriptor, ok := storyComplexity[grade]; ok {
		return descriptor
	}
	return storyComplexity["4"]
}

// BuildPrompt assembles the full user prompt for a generation request.
func BuildPrompt(req Request, sections SectionSet, intent NoteIntent) string {
	var b strings.Builder

	b.WriteString("You are an expert K-8 educator specializing in Texas curriculum design with ")
	b.WriteString("expertise in bilingual education. Generate a comprehensive, standards-aligned lesson plan.\n\n")

	instruction, ok := languageInstructions[req.Language]
	if !ok {
		instruction = languageInstructions[models.LanguageBilingual]
	}
	b.WriteString("LANGUAGE REQUIREMENT: ")
	b.WriteString(instruction)
	b.WriteString("\n\n")

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Grade Level: %s\n", req.GradeLevel)
	fmt.Fprintf(&b, "- Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "- TEKS Standard: %s\n", req.TeksStandard)
	fmt.Fprintf(&b, "- Learning Objective: %s\n", req.LearningObjective)
	fmt.Fprintf(&b, "- Duration: %d minutes\n", req.Duration)
	fmt.Fprintf(&b, "- Language Mode: %s\n\n", req.Language)

	b.WriteString(intentBlock(req, intent))
	b.WriteString("\n")

	b.WriteString(sectionSkeleton(sections, req.Subject))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Make the content practical, engaging, and directly applicable to %s grade %s.",
		req.GradeLevel, req.Subject)

	return b.String()
}

// intentBlock splices the instructional block matching the classified intent.
func intentBlock(req Request, intent NoteIntent) string {
	complexity := StoryComplexity(req.GradeLevel)

	switch intent {
	case IntentStory:
		return fmt.Sprintf(`TEACHER'S CUSTOM STORY REQUEST:

%s

STORY REQUIREMENTS:
1. Write a COMPLETE narrative story (400-600 words) based on the request above, at %s.
2. Include character descriptions, setting, a beginning/middle/end plot, dialogue, and emotions.
3. Place the complete story in the anticipatorySet section.
4. Use the EXACT character names and locations from the request in EVERY section: every
   guided practice problem, independent practice task, station, and the closure must
   reference the story. No generic problems.`, req.TeacherNotes, complexity)
	case IntentMathProblem:
		return fmt.Sprintf(`TEACHER'S CUSTOM PROBLEM CONTEXT REQUEST:

%s

PROBLEM REQUIREMENTS:
1. Build every guided and independent practice problem around the context above.
2. Keep numbers and operations aligned to the TEKS standard and grade level.
3. Write problem text at %s.
4. Reuse the same names, places, and quantities consistently across all sections.`, req.TeacherNotes, complexity)
	case IntentScenario:
		return fmt.Sprintf(`TEACHER'S CUSTOM SCENARIO REQUEST:

%s

SCENARIO REQUIREMENTS:
1. Create a factual, real-world scenario matching the request above, written at %s.
2. Introduce the scenario in the anticipatorySet and reference it when teaching.
3. Apply the scenario in guided and independent practice activities.
4. Keep the scenario accurate, culturally relevant, and age-appropriate.`, req.TeacherNotes, complexity)
	default:
		return fmt.Sprintf(`GRADE-LEVEL STORY REQUIREMENTS:
- Create an engaging story appropriate for %s.
- Use age-appropriate vocabulary and sentence structure.
- Include relatable characters and situations for grade %s students.`, complexity, req.GradeLevel)
	}
}

// sectionSkeleton emits the JSON schema text for the requested sections.
func sectionSkeleton(sections SectionSet, subject string) string {
	parts := []string{`  "lessonTitle": "Engaging title for the lesson (bilingual if applicable)"`}

	if sections.MainLesson {
		parts = append(parts, `  "mainLessonPlan": {
    "objective": "Clear, measurable learning objective aligned to TEKS (in requested language)",
    "materials": ["List of required materials (bilingual format if applicable)"],
    "anticipatorySet": "Hook/engagement activity (5 min)",
    "directInstruction": "Step-by-step teaching procedure with teacher actions",
    "modelingAndChecking": "How to model the concept and check for understanding",
    "closure": "Summary and reflection activity"
  }`)
	}
	if sections.GuidedPractice {
		parts = append(parts, `  "guidedPractice": {
    "description": "Detailed guided practice activities where teacher provides support",
    "activities": ["3-4 structured practice activities with teacher guidance"],
    "differentiationStrategies": ["Support strategies for diverse learners"]
  }`)
	}
	if sections.IndependentPractice {
		parts = append(parts, `  "independentPractice": {
    "description": "Activities students complete with minimal assistance",
    "activities": ["3-4 independent practice tasks"],
    "assessmentCriteria": ["How to assess student work"]
  }`)
	}
	if sections.LearningStations {
		parts = append(parts, `  "learningStations": [
    {
      "stationName": "Station name",
      "description": "What students do at this station",
      "materials": ["Required materials"],
      "instructions": "Step-by-step student instructions",
      "duration": "Recommended time"
    }
  ]`)
	}
	if sections.SmallGroup {
		parts = append(parts, `  "smallGroupInstruction": {
    "groupingStrategy": "How to group students (by skill level, etc.)",
    "focusArea": "Specific skill or concept to target",
    "activities": ["2-3 targeted small group activities"],
    "assessmentMethod": "How to monitor progress",
    "duration": "Recommended time per group"
  }`)
	}
	if sections.Tier2 {
		parts = append(parts, `  "tier2Intervention": {
    "targetPopulation": "Which students need Tier 2 support",
    "interventionGoal": "Specific skill to address",
    "strategies": ["3-4 evidence-based intervention strategies"],
    "frequency": "How often to implement (e.g., 3x per week, 20 min)",
    "progressMonitoring": "How to track improvement",
    "resources": ["Materials and tools needed"]
  }`)
	}
	if sections.Tier3 {
		parts = append(parts, `  "tier3Intervention": {
    "targetPopulation": "Students requiring intensive support",
    "interventionGoal": "Highly specific, measurable goal",
    "intensiveStrategies": ["3-4 intensive, individualized strategies"],
    "frequency": "Daily implementation schedule",
    "dataCollection": "Detailed progress monitoring plan",
    "collaborationPlan": "Who to involve (specialists, parents, etc.)",
    "resources": ["Specialized materials and supports"]
  }`)
	}

	var b strings.Builder
	if AllowsExtendedSections(subject) {
		b.WriteString("Generate a complete lesson plan with the following sections in JSON format:\n\n")
	} else {
		fmt.Fprintf(&b, "Generate a lesson plan with the following sections in JSON format "+
			"(NO Learning Stations, Small Group, or Tier interventions for %s):\n\n", subject)
	}
	b.WriteString("{\n")
	b.WriteString(strings.Join(parts, ",\n"))
	b.WriteString("\n}")
	return b.String()
}
