package domain

import "fmt"

// Grade is the ordinal quality grade assigned to a stage bar or a whole setup.
// GradeNone means "not evaluated" and is excluded from aggregation; checks on
// optional grades must test for GradeNone explicitly, never truthiness.
type Grade int

const (
	GradeNone Grade = iota
	GradeReject
	GradeC
	GradeB
	GradeA
	GradeAPlus
)

// String returns the display form of the grade.
func (g Grade) String() string {
	switch g {
	case GradeAPlus:
		return "A+"
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	case GradeReject:
		return "Reject"
	default:
		return "None"
	}
}

// AtLeast reports whether g meets the given minimum grade.
// GradeNone never satisfies a minimum.
func (g Grade) AtLeast(min Grade) bool {
	if g == GradeNone {
		return false
	}
	return g >= min
}

// ParseGrade converts a display string back to a Grade.
func ParseGrade(s string) (Grade, error) {
	switch s {
	case "A+":
		return GradeAPlus, nil
	case "A":
		return GradeA, nil
	case "B":
		return GradeB, nil
	case "C":
		return GradeC, nil
	case "Reject":
		return GradeReject, nil
	case "None", "":
		return GradeNone, nil
	default:
		return GradeNone, fmt.Errorf("unknown grade %q", s)
	}
}

// MinGrade returns the lowest of the participating (non-None) grades.
// If no grade participates, it returns GradeNone.
func MinGrade(grades ...Grade) Grade {
	min := GradeNone
	for _, g := range grades {
		if g == GradeNone {
			continue
		}
		if min == GradeNone || g < min {
			min = g
		}
	}
	return min
}
