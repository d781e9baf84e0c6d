// Package teks serves the Texas Essential Knowledge and Skills standards
// table: a static grade -> subject -> standards mapping loaded once at
// startup and queried read-only afterwards.
package teks

import (
	_ "embed"
	"encoding/json"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
)

//go:embed teks_standards.json
var bundledStandards []byte

// Standard is a single curriculum standard record.
type Standard struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Stats summarizes the loaded standards table.
type Stats struct {
	TotalGrades           int                 `json:"total_grades"`
	Grades                []string            `json:"grades"`
	SubjectsByGrade       map[string][]string `json:"subjects_by_grade"`
	StandardsCountByGrade map[string]int      `json:"standards_count_by_grade"`
	TotalStandards        int                 `json:"total_standards"`
}

// Service answers read-only queries over the standards table. A failed load
// leaves the table empty so every query degrades to empty results instead of
// failing the process.
type Service struct {
	data map[string]map[string][]Standard
}

// Load builds a Service from the file at path, or from the bundled table
// when path is empty. Load never fails: a missing or corrupt file produces
// an empty table and a logged warning.
func Load(path string) *Service {
	raw := bundledStandards
	if path != "" {
		fileRaw, errRead := os.ReadFile(path)
		if errRead != nil {
			log.WithError(errRead).Warnf("teks: cannot read standards file %s, serving empty table", path)
			return &Service{data: map[string]map[string][]Standard{}}
		}
		raw = fileRaw
	}

	var data map[string]map[string][]Standard
	if errUnmarshal := json.Unmarshal(raw, &data); errUnmarshal != nil {
		log.WithError(errUnmarshal).Warn("teks: invalid standards data, serving empty table")
		return &Service{data: map[string]map[string][]Standard{}}
	}
	if data == nil {
		data = map[string]map[string][]Standard{}
	}

	svc := &Service{data: data}
	log.Infof("teks: loaded standards for %d grades (%d standards total)", len(data), svc.Stats().TotalStandards)
	return svc
}

// Grades returns the available grade levels in display order (K first).
func (s *Service) Grades() []string {
	grades := make([]string, 0, len(s.data))
	for grade := range s.data {
		grades = append(grades, grade)
	}
	sort.Slice(grades, func(i, j int) bool { return gradeRank(grades[i]) < gradeRank(grades[j]) })
	return grades
}

// Subjects returns the subjects available for a grade, sorted by name.
// An unknown grade yields an empty slice.
func (s *Service) Subjects(grade string) []string {
	subjects := make([]string, 0, len(s.data[grade]))
	for subject := range s.data[grade] {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}

// Standards returns the ordered standards for a grade and subject.
// An unknown pair yields an empty slice, never an error.
func (s *Service) Standards(grade, subject string) []Standard {
	grades, ok := s.data[grade]
	if !ok {
		return []Standard{}
	}
	standards, ok := grades[subject]
	if !ok {
		return []Standard{}
	}
	return standards
}

// FindByCode scans all grades and subjects for the first standard with the
// given code. The bool result reports whether a match was found.
func (s *Service) FindByCode(code string) (Standard, bool) {
	for _, grade := range s.Grades() {
		for _, subject := range s.Subjects(grade) {
			for _, standard := range s.data[grade][subject] {
				if standard.Code == code {
					return standard, true
				}
			}
		}
	}
	return Standard{}, false
}

// HasGrade reports whether the grade exists in the table.
func (s *Service) HasGrade(grade string) bool {
	_, ok := s.data[grade]
	return ok
}

// HasSubject reports whether the grade and subject pair exists in the table.
func (s *Service) HasSubject(grade, subject string) bool {
	_, ok := s.data[grade][subject]
	return ok
}

// Stats aggregates totals across the loaded table.
func (s *Service) Stats() Stats {
	stats := Stats{
		Grades:                s.Grades(),
		SubjectsByGrade:       make(map[string][]string, len(s.data)),
		StandardsCountByGrade: make(map[string]int, len(s.data)),
	}
	stats.TotalGrades = len(stats.Grades)
	for _, grade := range stats.Grades {
		stats.SubjectsByGrade[grade] = s.Subjects(grade)
		count := 0
		for _, standards := range s.data[grade] {
			count += len(standards)
		}
		stats.StandardsCountByGrade[grade] = count
		stats.TotalStandards += count
	}
	return stats
}

// gradeRank orders K before the numeric grades.
func gradeRank(grade string) int {
	if grade == "K" {
		return 0
	}
	if len(grade) == 1 && grade[0] >= '1' && grade[0] <= '9' {
		return int(grade[0] - '0')
	}
	return 100
}
