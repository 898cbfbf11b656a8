package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/magacin/internal/model"
	"github.com/erazemk/magacin/internal/schedule"
	"github.com/erazemk/magacin/internal/store"
)

// ProjectsHandler handles project and calendar endpoints.
type ProjectsHandler struct {
	DB       *sql.DB
	Schedule *schedule.Index
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	PDFURL      string `json:"pdf_url" validate:"omitempty,url"`
	PDFDocument string `json:"pdf_document" validate:"max=200"`
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := store.ListProjects(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	jsonResponse(w, http.StatusOK, projects)
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	// Both dates already passed the datetime check.
	start, _ := civil.ParseDate(req.StartDate)
	end, _ := civil.ParseDate(req.EndDate)
	if end.Before(start) {
		jsonError(w, http.StatusBadRequest, "end_date: must not be before start_date")
		return
	}

	project, err := store.CreateProject(r.Context(), h.DB, model.Project{
		Name:        req.Name,
		StartDate:   start,
		EndDate:     end,
		Color:       req.Color,
		PDFURL:      req.PDFURL,
		PDFDocument: req.PDFDocument,
	})
	if err != nil {
		jsonError(w, http.StatusConflict, "project already exists")
		return
	}

	slog.Info("project created", "user", currentUser(r), "project", project.Name,
		"start", project.StartDate.String(), "end", project.EndDate.String())
	jsonResponse(w, http.StatusCreated, project)
}

// Document handles GET /api/projects/{id}/document.
func (h *ProjectsHandler) Document(w http.ResponseWriter, r *http.Request) {
	project, err := store.GetProject(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get project", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		jsonError(w, http.StatusNotFound, "project not found")
		return
	}
	h.writeDocument(w, r, schedule.ByValue(*project))
}

// DocumentByName handles GET /api/projects/document?name=.
func (h *ProjectsHandler) DocumentByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	h.writeDocument(w, r, schedule.ByName(name))
}

func (h *ProjectsHandler) writeDocument(w http.ResponseWriter, r *http.Request, ref schedule.ProjectRef) {
	doc, err := h.Schedule.Document(r.Context(), ref)
	if err != nil {
		engineError(w, err, "resolve project document")
		return
	}
	if doc == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	jsonResponse(w, http.StatusOK, doc)
}

type calendarResponse struct {
	*schedule.MonthGrid
	Prev civil.Date `json:"prev"`
	Next civil.Date `json:"next"`
}

// Calendar handles GET /api/calendar?month=YYYY-MM. Without a month the
// current one is shown.
func (h *ProjectsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	first := civil.DateOf(time.Now())
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "month must be in YYYY-MM form")
			return
		}
		first = civil.DateOf(t)
	}
	first.Day = 1

	grid, err := h.Schedule.Month(r.Context(), first.Year, first.Month)
	if err != nil {
		engineError(w, err, "build calendar")
		return
	}
	jsonResponse(w, http.StatusOK, calendarResponse{
		MonthGrid: grid,
		Prev:      schedule.PrevMonth(first),
		Next:      schedule.NextMonth(first),
	})
}

// Day handles GET /api/calendar/{date}.
func (h *ProjectsHandler) Day(w http.ResponseWriter, r *http.Request) {
	date, err := civil.ParseDate(r.PathValue("date"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD form")
		return
	}

	projects, err := h.Schedule.ProjectsActiveOn(r.Context(), date)
	if err != nil {
		engineError(w, err, "resolve active projects")
		return
	}
	jsonResponse(w, http.StatusOK, projects)
}
