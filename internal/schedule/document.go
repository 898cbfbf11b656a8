package schedule

import (
	"context"
	"fmt"

	"github.com/erazemk/magacin/internal/model"
)

// DefaultDocumentName titles a project PDF that has no name of its own.
const DefaultDocumentName = "PDF Dokument"

// ProjectRef identifies a project either by name or by value.
type ProjectRef struct {
	name    string
	project *model.Project
}

// ByName refers to the project with the given name.
func ByName(name string) ProjectRef {
	return ProjectRef{name: name}
}

// ByValue refers to p directly.
func ByValue(p model.Project) ProjectRef {
	return ProjectRef{project: &p}
}

// Document is a project's PDF reference.
type Document struct {
	Project string `json:"project"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// Document resolves the PDF attached to the referenced project. It returns
// nil when the project has no PDF.
func (x *Index) Document(ctx context.Context, ref ProjectRef) (*Document, error) {
	p := ref.project
	if p == nil {
		projects, err := x.projects.ListProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		for i := range projects {
			if projects[i].Name == ref.name {
				p = &projects[i]
				break
			}
		}
		if p == nil {
			return nil, &model.NotFoundError{Kind: "project", ID: ref.name}
		}
	}

	if p.PDFURL == "" {
		return nil, nil
	}
	name := p.PDFDocument
	if name == "" {
		name = DefaultDocumentName
	}
	return &Document{
		Project: p.Name,
		Title:   p.Name + " - " + name,
		URL:     p.PDFURL,
	}, nil
}
