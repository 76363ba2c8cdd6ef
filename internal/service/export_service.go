package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/internal/models"
	"github.com/noah-isme/academic-console/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the currently visible list of a page as a file.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the defaults of pkg/export.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Courses renders courses in format.
func (s *ExportService) Courses(courses []models.Course, format export.Format) (*ExportFile, error) {
	return s.render("courses", CourseDataset(courses), format)
}

// Specialisations renders specialisations in format.
func (s *ExportService) Specialisations(specs []models.Specialisation, format export.Format) (*ExportFile, error) {
	return s.render("specialisations", SpecialisationDataset(specs), format)
}

// CourseDataset tabulates courses in list order.
func CourseDataset(courses []models.Course) export.Dataset {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			strconv.Itoa(c.CourseID),
			c.CourseCode,
			c.Name,
			c.Faculty,
			strconv.Itoa(c.Year),
			c.Term,
			strconv.Itoa(c.Credits),
			strconv.Itoa(c.Capacity),
			c.Description,
		})
	}
	return export.Dataset{
		Title: "Courses",
		Columns: []export.Column{
			{Header: "ID", Weight: 0.6},
			{Header: "Code", Weight: 1},
			{Header: "Name", Weight: 2.5},
			{Header: "Faculty", Weight: 2},
			{Header: "Year", Weight: 0.6},
			{Header: "Term", Weight: 0.9},
			{Header: "Credits", Weight: 0.8},
			{Header: "Capacity", Weight: 0.9},
			{Header: "Description", Weight: 3.5},
		},
		Rows: rows,
	}
}

// SpecialisationDataset tabulates specialisations in list order.
func SpecialisationDataset(specs []models.Specialisation) export.Dataset {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		rows = append(rows, []string{
			strconv.Itoa(s.SpecialisationID),
			s.Code,
			s.Name,
			strconv.Itoa(s.Year),
			strconv.Itoa(s.CreditsRequired),
			s.Description,
		})
	}
	return export.Dataset{
		Title: "Specialisations",
		Columns: []export.Column{
			{Header: "ID", Weight: 0.6},
			{Header: "Code", Weight: 1},
			{Header: "Name", Weight: 2.5},
			{Header: "Year", Weight: 0.6},
			{Header: "Credits Required", Weight: 1.2},
			{Header: "Description", Weight: 4},
		},
		Rows: rows,
	}
}

func (s *ExportService) render(kind string, dataset export.Dataset, format export.Format) (*ExportFile, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case export.FormatCSV:
		body, err = s.csv.Render(dataset)
	case export.FormatPDF:
		body, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Warn("export render failed", zap.String("kind", kind), zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", kind, s.now().UTC().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
