package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/erazemk/magacin/internal/model"
)

const projectColumns = `id, name, start_date, end_date, color, pdf_url, pdf_document`

// CreateProject creates a new project.
func CreateProject(ctx context.Context, db *sql.DB, p model.Project) (*model.Project, error) {
	if !p.StartDate.IsValid() || !p.EndDate.IsValid() {
		return nil, fmt.Errorf("project dates must be valid calendar dates")
	}
	if p.EndDate.Before(p.StartDate) {
		return nil, fmt.Errorf("project cannot end before it starts")
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, name, start_date, end_date, color, pdf_url, pdf_document)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.StartDate.String(), p.EndDate.String(), p.Color, p.PDFURL, p.PDFDocument,
	)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return GetProject(ctx, db, id)
}

// GetProject returns a project by ID, or nil if it does not exist.
func GetProject(ctx context.Context, db *sql.DB, id string) (*model.Project, error) {
	p, err := scanProject(db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects ordered by start date, then name.
func ListProjects(ctx context.Context, db *sql.DB) ([]model.Project, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY start_date, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(s scanner) (*model.Project, error) {
	p := &model.Project{}
	var start, end string
	if err := s.Scan(&p.ID, &p.Name, &start, &end, &p.Color, &p.PDFURL, &p.PDFDocument); err != nil {
		return nil, err
	}

	var err error
	if p.StartDate, err = civil.ParseDate(start); err != nil {
		return nil, fmt.Errorf("parsing start date of %s: %w", p.Name, err)
	}
	if p.EndDate, err = civil.ParseDate(end); err != nil {
		return nil, fmt.Errorf("parsing end date of %s: %w", p.Name, err)
	}
	return p, nil
}
