package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

type PatientHandler struct {
	patientService *services.PatientService
}

func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{
		patientService: services.NewPatientService(db),
	}
}

// List returns paginated patients
// GET /api/patients
func (h *PatientHandler) List(c *gin.Context) {
	var req services.PatientListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.patientService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetByID returns a patient by ID
// GET /api/patients/:id
func (h *PatientHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid patient id")
		return
	}

	patient, err := h.patientService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "patient not found")
		return
	}

	response.Success(c, patient)
}

// Create creates a new patient
// POST /api/patients
func (h *PatientHandler) Create(c *gin.Context) {
	var req services.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	patient, err := h.patientService.Create(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, patient)
}

// Update updates a patient
// PUT /api/patients/:id
func (h *PatientHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid patient id")
		return
	}

	var req services.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	patient, err := h.patientService.Update(uint(id), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, patient)
}

// Delete deletes a patient
// DELETE /api/patients/:id
func (h *PatientHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid patient id")
		return
	}

	if err := h.patientService.Delete(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "patient deleted successfully"})
}

// SubmitIntake accepts the public intake form. The route is rate
// limited and unauthenticated; only the created id is returned.
// POST /api/intake
func (h *PatientHandler) SubmitIntake(c *gin.Context) {
	var req services.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	patient, err := h.patientService.SubmitIntake(&req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, gin.H{"id": patient.ID})
}
