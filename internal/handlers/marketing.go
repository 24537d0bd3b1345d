package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

// importUploadLimit caps CSV uploads at 10 MB.
const importUploadLimit = 10 << 20

type MarketingHandler struct {
	marketingService *services.MarketingService
	importService    *services.ImportService
	exportService    *services.ExportService
}

func NewMarketingHandler(db *gorm.DB, cfg *config.MarketingConfig) *MarketingHandler {
	return &MarketingHandler{
		marketingService: services.NewMarketingService(db),
		importService:    services.NewImportService(db),
		exportService:    services.NewExportService(db, cfg, services.NewSystemConfigService(db)),
	}
}

func projectParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, false
	}
	return uint(id), true
}

// --- Campaigns ---

// ListCampaigns returns a project's campaigns
// GET /api/projects/:id/marketing/campaigns
func (h *MarketingHandler) ListCampaigns(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.CampaignListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.marketingService.ListCampaigns(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetCampaign returns one campaign
// GET /api/projects/:id/marketing/campaigns/:campaign_id
func (h *MarketingHandler) GetCampaign(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	campaignID, err := strconv.ParseUint(c.Param("campaign_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}

	campaign, err := h.marketingService.GetCampaign(projectID, uint(campaignID))
	if err != nil {
		response.NotFound(c, "campaign not found")
		return
	}

	response.Success(c, campaign)
}

// CreateCampaign creates a campaign
// POST /api/projects/:id/marketing/campaigns
func (h *MarketingHandler) CreateCampaign(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.marketingService.CreateCampaign(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, campaign)
}

// UpdateCampaign updates a campaign. Existing leads keep their
// attribution.
// PUT /api/projects/:id/marketing/campaigns/:campaign_id
func (h *MarketingHandler) UpdateCampaign(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	campaignID, err := strconv.ParseUint(c.Param("campaign_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}

	var req services.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.marketingService.UpdateCampaign(projectID, uint(campaignID), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, campaign)
}

// DeleteCampaign deletes a campaign, detaching its expenses and leads
// DELETE /api/projects/:id/marketing/campaigns/:campaign_id
func (h *MarketingHandler) DeleteCampaign(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	campaignID, err := strconv.ParseUint(c.Param("campaign_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}

	if err := h.marketingService.DeleteCampaign(projectID, uint(campaignID)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "campaign deleted successfully"})
}

// --- Expenses ---

// ListExpenses returns expenses with date range and channel filters
// GET /api/projects/:id/marketing/expenses
func (h *MarketingHandler) ListExpenses(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.marketingService.ListExpenses(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// CreateExpense records a spend entry
// POST /api/projects/:id/marketing/expenses
func (h *MarketingHandler) CreateExpense(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	expense, err := h.marketingService.CreateExpense(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, expense)
}

// UpdateExpense updates a spend entry
// PUT /api/projects/:id/marketing/expenses/:expense_id
func (h *MarketingHandler) UpdateExpense(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	expenseID, err := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid expense id")
		return
	}

	var req services.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	expense, err := h.marketingService.UpdateExpense(projectID, uint(expenseID), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, expense)
}

// DeleteExpense removes a spend entry
// DELETE /api/projects/:id/marketing/expenses/:expense_id
func (h *MarketingHandler) DeleteExpense(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	expenseID, err := strconv.ParseUint(c.Param("expense_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid expense id")
		return
	}

	if err := h.marketingService.DeleteExpense(projectID, uint(expenseID)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "expense deleted successfully"})
}

// --- Leads ---

// ListLeads returns leads with status/channel/date filters
// GET /api/projects/:id/marketing/leads
func (h *MarketingHandler) ListLeads(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.LeadListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.marketingService.ListLeads(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetLead returns one lead
// GET /api/projects/:id/marketing/leads/:lead_id
func (h *MarketingHandler) GetLead(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	leadID, err := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid lead id")
		return
	}

	lead, err := h.marketingService.GetLead(projectID, uint(leadID))
	if err != nil {
		response.NotFound(c, "lead not found")
		return
	}

	response.Success(c, lead)
}

// CreateLead captures a lead; campaign attribution happens here
// POST /api/projects/:id/marketing/leads
func (h *MarketingHandler) CreateLead(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	lead, err := h.marketingService.CreateLead(projectID, userID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, lead)
}

// UpdateLead updates a lead's status or fields
// PUT /api/projects/:id/marketing/leads/:lead_id
func (h *MarketingHandler) UpdateLead(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	leadID, err := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid lead id")
		return
	}

	var req services.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	lead, err := h.marketingService.UpdateLead(projectID, uint(leadID), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, lead)
}

// DeleteLead removes a lead
// DELETE /api/projects/:id/marketing/leads/:lead_id
func (h *MarketingHandler) DeleteLead(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	leadID, err := strconv.ParseUint(c.Param("lead_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid lead id")
		return
	}

	if err := h.marketingService.DeleteLead(projectID, uint(leadID)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "lead deleted successfully"})
}

// --- Metrics ---

// GetMetrics returns KPI totals, optionally broken down by channel or
// region
// GET /api/projects/:id/marketing/metrics
func (h *MarketingHandler) GetMetrics(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.MarketingMetricsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.marketingService.GetMetrics(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// --- CSV import ---

// ImportExpenses accepts a CSV upload. Small files run inline, larger
// ones go through the queue; either way the job row tracks progress.
// POST /api/projects/:id/marketing/expenses/import
func (h *MarketingHandler) ImportExpenses(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	if fileHeader.Size > importUploadLimit {
		response.BadRequest(c, "file exceeds the 10 MB import limit")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, importUploadLimit))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	job, err := h.importService.StartImport(projectID, userID, fileHeader.Filename, data)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, job)
}

// GetImportJob returns one import job with its counters
// GET /api/projects/:id/marketing/imports/:job_id
func (h *MarketingHandler) GetImportJob(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid job id")
		return
	}

	job, err := h.importService.GetJob(projectID, uint(jobID))
	if err != nil {
		response.NotFound(c, "import job not found")
		return
	}

	response.Success(c, job)
}

// ListImportJobs returns recent import jobs for the project
// GET /api/projects/:id/marketing/imports
func (h *MarketingHandler) ListImportJobs(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	jobs, err := h.importService.ListJobs(projectID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, jobs)
}

// --- Conversion exports ---

// ExportConversions downloads an offline conversion CSV for the given
// platform (google or meta)
// GET /api/projects/:id/marketing/conversions/:platform
func (h *MarketingHandler) ExportConversions(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	var req services.ConversionExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var data []byte
	var fileName string
	var err error

	switch c.Param("platform") {
	case "google":
		data, fileName, err = h.exportService.ExportGoogle(projectID, &req)
	case "meta":
		data, fileName, err = h.exportService.ExportMeta(projectID, &req)
	default:
		response.BadRequest(c, "platform must be google or meta")
		return
	}
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", data)
}

// PushConversions generates the conversion CSV and posts it to the
// configured export webhook
// POST /api/projects/:id/marketing/conversions/:platform/push
func (h *MarketingHandler) PushConversions(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}

	platform := c.Param("platform")
	if platform != "google" && platform != "meta" {
		response.BadRequest(c, "platform must be google or meta")
		return
	}

	var req services.ConversionExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rows, err := h.exportService.PushConversions(projectID, platform, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"pushed": rows})
}
