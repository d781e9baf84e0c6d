package lesson

// Canonical subject names matching the TEKS standards table.
const (
	SubjectMathematics         = "Mathematics"
	SubjectEnglishLanguageArts = "English Language Arts"
	SubjectScience             = "Science"
	SubjectSocialStudies       = "Social Studies"
	SubjectAdvancedMathematics = "Advanced Mathematics"
)

// validGrades is the supported K-8 grade band.
var validGrades = map[string]bool{
	"K": true, "1": true, "2": true, "3": true, "4": true,
	"5": true, "6": true, "7": true, "8": true,
}

// subjectGrades lists the grades each subject is offered in. A nil slice
// means all supported grades.
var subjectGrades = map[string][]string{
	SubjectMathematics:         nil,
	SubjectEnglishLanguageArts: nil,
	SubjectScience:             nil,
	SubjectSocialStudies:       nil,
	SubjectAdvancedMathematics: {"6", "7", "8"},
}

// ValidGrade reports whether grade is within the supported K-8 band.
func ValidGrade(grade string) bool {
	return validGrades[grade]
}

// ValidSubject reports whether subject is a known subject name.
func ValidSubject(subject string) bool {
	_, ok := subjectGrades[subject]
	return ok
}

// SubjectOfferedInGrade reports whether subject is taught at grade.
func SubjectOfferedInGrade(subject, grade string) bool {
	grades, ok := subjectGrades[subject]
	if !ok {
		return false
	}
	if grades == nil {
		return true
	}
	for _, g := range grades {
		if g == grade {
			return true
		}
	}
	return false
}
