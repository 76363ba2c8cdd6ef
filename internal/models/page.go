package models

// Page is a top level console page.
type Page string

const (
	PageCourses         Page = "courses"
	PageSpecialisations Page = "specialisations"
)

// ParsePage maps a raw page name to a Page.
func ParsePage(raw string) (Page, bool) {
	switch Page(raw) {
	case PageCourses, PageSpecialisations:
		return Page(raw), true
	default:
		return "", false
	}
}

// SessionStatus is the JSON view of a console workspace.
type SessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	Page          Page   `json:"page"`
	Screen        string `json:"screen"`
}
