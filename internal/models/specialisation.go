package models

import "math"

// Specialisation mirrors the backend specialisation record.
type Specialisation struct {
	SpecialisationID int    `json:"specialisationId" validate:"gte=0"`
	Code             string `json:"code" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description" validate:"required"`
	Year             int    `json:"year"`
	CreditsRequired  int    `json:"creditsRequired"`
}

// NewSpecialisationDraft returns the defaults the create form is seeded with.
func NewSpecialisationDraft() Specialisation {
	return Specialisation{Year: 2, CreditsRequired: 18}
}

// SpecialisationStats summarises a loaded specialisation collection.
type SpecialisationStats struct {
	Total                int
	TotalCreditsRequired int
	AverageCredits       int
}

// SummariseSpecialisations computes the header statistics of the
// specialisations page. The average is rounded half away from zero.
func SummariseSpecialisations(specs []Specialisation) SpecialisationStats {
	stats := SpecialisationStats{Total: len(specs)}
	for _, s := range specs {
		stats.TotalCreditsRequired += s.CreditsRequired
	}
	if stats.Total > 0 {
		stats.AverageCredits = int(math.Round(float64(stats.TotalCreditsRequired) / float64(stats.Total)))
	}
	return stats
}
