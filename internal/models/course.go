package models

// Term values accepted for a course.
const (
	TermFall   = "Fall"
	TermSpring = "Spring"
)

// Course mirrors the backend course record. The console never patches a
// loaded course in place; it refetches after every mutation.
type Course struct {
	CourseID    int    `json:"courseId" validate:"gte=0"`
	CourseCode  string `json:"courseCode" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Year        int    `json:"year"`
	Term        string `json:"term" validate:"required,oneof=Fall Spring"`
	Faculty     string `json:"faculty" validate:"required"`
	Credits     int    `json:"credits"`
	Capacity    int    `json:"capacity"`
}

// NewCourseDraft returns the defaults the create form is seeded with.
func NewCourseDraft() Course {
	return Course{
		Year:     2,
		Term:     TermFall,
		Faculty:  "Computer Science",
		Credits:  3,
		Capacity: 50,
	}
}

// CourseStats summarises a loaded course collection.
type CourseStats struct {
	Total         int
	TotalCredits  int
	TotalCapacity int
}

// SummariseCourses computes the header statistics of the courses page.
func SummariseCourses(courses []Course) CourseStats {
	stats := CourseStats{Total: len(courses)}
	for _, c := range courses {
		stats.TotalCredits += c.Credits
		stats.TotalCapacity += c.Capacity
	}
	return stats
}
