package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-console/internal/models"
	"github.com/noah-isme/academic-console/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestExportCoursesCSV(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	file, err := svc.Courses([]models.Course{{
		CourseID: 1, CourseCode: "CS101", Name: "Intro", Description: "d",
		Year: 2, Term: "Fall", Faculty: "CS", Credits: 3, Capacity: 50,
	}}, export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "courses_20260304_050607.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "CS101", "Intro", "CS", "2", "Fall", "3", "50", "d"}, records[1])
}

func TestExportSpecialisationsPDF(t *testing.T) {
	svc := NewExportService(nil, nil, nil)

	file, err := svc.Specialisations([]models.Specialisation{{SpecialisationID: 2, Code: "AI", Name: "Artificial Intelligence", Year: 3, CreditsRequired: 18}}, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF-")))
}

func TestExportEmptyListStillHasHeader(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	file, err := svc.Specialisations(nil, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "ID,Code,Name,Year,Credits Required,Description\n", string(file.Body))
}

func TestExportRenderFailure(t *testing.T) {
	svc := NewExportService(nil, failingRenderer{}, nil)
	_, err := svc.Courses(nil, export.FormatCSV)
	assert.EqualError(t, err, "disk full")

	_, err = svc.Courses(nil, export.Format("xlsx"))
	assert.Error(t, err)
}
