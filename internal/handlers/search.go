package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/response"
)

// SearchHandler provides a global search across companies, contacts,
// projects, patients, tasks, and the caller's boards.
type SearchHandler struct {
	db *gorm.DB
}

func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{db: db}
}

type SearchResult struct {
	Companies []CompanySearchItem `json:"companies"`
	Contacts  []ContactSearchItem `json:"contacts"`
	Projects  []ProjectSearchItem `json:"projects"`
	Patients  []PatientSearchItem `json:"patients"`
	Tasks     []TaskSearchItem    `json:"tasks"`
	Boards    []BoardSearchItem   `json:"boards"`
	Total     int                 `json:"total"`
}

type CompanySearchItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	City     string `json:"city"`
}

type ContactSearchItem struct {
	ID        uint   `json:"id"`
	CompanyID uint   `json:"company_id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Email     string `json:"email"`
}

type ProjectSearchItem struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

type PatientSearchItem struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

type TaskSearchItem struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

type BoardSearchItem struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// Search performs a global search. Boards are restricted to the
// caller's own.
func (h *SearchHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" || len(q) < 2 {
		response.BadRequest(c, "search query must be at least 2 characters")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	result := SearchResult{}
	pattern := "%" + q + "%"
	userID := middleware.GetUserID(c)

	var companies []models.Company
	h.db.Model(&models.Company{}).
		Where("name LIKE ? OR industry LIKE ? OR email LIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&companies)
	for _, co := range companies {
		result.Companies = append(result.Companies, CompanySearchItem{
			ID:       co.ID,
			Name:     co.Name,
			Industry: co.Industry,
			City:     co.City,
		})
	}

	var contacts []models.Contact
	h.db.Model(&models.Contact{}).
		Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&contacts)
	for _, ct := range contacts {
		result.Contacts = append(result.Contacts, ContactSearchItem{
			ID:        ct.ID,
			CompanyID: ct.CompanyID,
			Name:      ct.FirstName + " " + ct.LastName,
			Title:     ct.Title,
			Email:     ct.Email,
		})
	}

	var projects []models.Project
	h.db.Model(&models.Project{}).
		Where("name LIKE ? OR description LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&projects)
	for _, p := range projects {
		result.Projects = append(result.Projects, ProjectSearchItem{
			ID:     p.ID,
			Name:   p.Name,
			Status: p.Status,
			Stage:  p.Stage,
		})
	}

	var patients []models.Patient
	h.db.Model(&models.Patient{}).
		Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(limit).
		Find(&patients)
	for _, p := range patients {
		result.Patients = append(result.Patients, PatientSearchItem{
			ID:     p.ID,
			Name:   p.FirstName + " " + p.LastName,
			Email:  p.Email,
			Phone:  p.Phone,
			Status: p.Status,
		})
	}

	var tasks []models.Task
	h.db.Model(&models.Task{}).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks)
	for _, t := range tasks {
		result.Tasks = append(result.Tasks, TaskSearchItem{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Priority: t.Priority,
		})
	}

	var boards []models.Board
	h.db.Model(&models.Board{}).
		Where("owner_id = ? AND title LIKE ?", userID, pattern).
		Limit(limit).
		Find(&boards)
	for _, b := range boards {
		result.Boards = append(result.Boards, BoardSearchItem{
			ID:    b.ID,
			Title: b.Title,
		})
	}

	result.Total = len(result.Companies) + len(result.Contacts) + len(result.Projects) +
		len(result.Patients) + len(result.Tasks) + len(result.Boards)
	response.Success(c, result)
}
