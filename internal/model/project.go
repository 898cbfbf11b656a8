package model

import "cloud.google.com/go/civil"

// Project is a time-bounded job that items are allocated to.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	StartDate   civil.Date `json:"start_date"`
	EndDate     civil.Date `json:"end_date"`
	Color       string     `json:"color"`
	PDFURL      string     `json:"pdf_url,omitempty"`
	PDFDocument string     `json:"pdf_document,omitempty"`
}

// ActiveOn reports whether d falls inside the project's inclusive date range.
func (p Project) ActiveOn(d civil.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
