package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// MarketingService manages campaigns, expense logs and leads for one
// CRM project at a time. Lead attribution happens once at insert.
type MarketingService struct {
	db *gorm.DB
}

func NewMarketingService(db *gorm.DB) *MarketingService {
	return &MarketingService{db: db}
}

// --- Campaigns ---

type CampaignListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	Channel  string `form:"channel"`
	Status   string `form:"status" binding:"omitempty,oneof=active paused ended"`
}

type CampaignListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.Campaign `json:"items"`
}

type CreateCampaignRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	UTMCampaign string  `json:"utm_campaign"`
	Channel     string  `json:"channel"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status" binding:"omitempty,oneof=active paused ended"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

type UpdateCampaignRequest struct {
	Name        string   `json:"name"`
	UTMCampaign string   `json:"utm_campaign"`
	Channel     string   `json:"channel"`
	Region      string   `json:"region"`
	Country     string   `json:"country"`
	Budget      *float64 `json:"budget"`
	Status      string   `json:"status" binding:"omitempty,oneof=active paused ended"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

// ListCampaigns returns paginated campaigns for a project
func (s *MarketingService) ListCampaigns(projectID uint, req *CampaignListRequest) (*CampaignListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	query := s.db.Model(&models.Campaign{}).Where("project_id = ?", projectID)

	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Channel != "" {
		query = query.Where("channel = ?", req.Channel)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	query.Count(&total)

	var campaigns []models.Campaign
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, err
	}

	return &CampaignListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    campaigns,
	}, nil
}

// GetCampaign returns one campaign scoped to its project
func (s *MarketingService) GetCampaign(projectID, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.db.Where("id = ? AND project_id = ?", id, projectID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("campaign not found")
		}
		return nil, err
	}
	return &campaign, nil
}

// CreateCampaign creates a campaign. Attribution of existing leads is
// never recomputed.
func (s *MarketingService) CreateCampaign(projectID uint, req *CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.checkProject(projectID); err != nil {
		return nil, err
	}

	startDate, err := parseDatePtr(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDatePtr(req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.Status == "" {
		req.Status = "active"
	}

	campaign := models.Campaign{
		ProjectID:   projectID,
		Name:        req.Name,
		UTMCampaign: req.UTMCampaign,
		Channel:     req.Channel,
		Region:      req.Region,
		Country:     req.Country,
		Budget:      req.Budget,
		Status:      req.Status,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	if err := s.db.Create(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// UpdateCampaign updates a campaign with only the provided fields
func (s *MarketingService) UpdateCampaign(projectID, id uint, req *UpdateCampaignRequest) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(projectID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.UTMCampaign != "" {
		updates["utm_campaign"] = req.UTMCampaign
	}
	if req.Channel != "" {
		updates["channel"] = req.Channel
	}
	if req.Region != "" {
		updates["region"] = req.Region
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.StartDate != "" {
		startDate, err := parseDatePtr(req.StartDate)
		if err != nil {
			return nil, err
		}
		updates["start_date"] = startDate
	}
	if req.EndDate != "" {
		endDate, err := parseDatePtr(req.EndDate)
		if err != nil {
			return nil, err
		}
		updates["end_date"] = endDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(campaign).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(campaign, id)
	return campaign, nil
}

// DeleteCampaign removes a campaign. Attributed leads keep their
// campaign id.
func (s *MarketingService) DeleteCampaign(projectID, id uint) error {
	result := s.db.Where("project_id = ?", projectID).Delete(&models.Campaign{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("campaign not found")
	}
	return nil
}

// --- Expense logs ---

type ExpenseListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Channel    string `form:"channel"`
	CampaignID uint   `form:"campaign_id"`
	Start      string `form:"start"`
	End        string `form:"end"`
}

type ExpenseListResponse struct {
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Items    []models.ExpenseLog `json:"items"`
}

type CreateExpenseRequest struct {
	CampaignID  *uint   `json:"campaign_id"`
	Date        string  `json:"date" binding:"required"`
	Channel     string  `json:"channel"`
	Amount      float64 `json:"amount" binding:"required"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	Notes       string  `json:"notes"`
}

type UpdateExpenseRequest struct {
	CampaignID  *uint    `json:"campaign_id"`
	Date        string   `json:"date"`
	Channel     string   `json:"channel"`
	Amount      *float64 `json:"amount"`
	Clicks      *int64   `json:"clicks"`
	Impressions *int64   `json:"impressions"`
	Region      string   `json:"region"`
	Country     string   `json:"country"`
	Notes       string   `json:"notes"`
}

// ListExpenses returns paginated expense logs, newest date first
func (s *MarketingService) ListExpenses(projectID uint, req *ExpenseListRequest) (*ExpenseListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	query := s.db.Model(&models.ExpenseLog{}).Where("project_id = ?", projectID)

	if req.Channel != "" {
		query = query.Where("channel = ?", req.Channel)
	}
	if req.CampaignID != 0 {
		query = query.Where("campaign_id = ?", req.CampaignID)
	}

	query, err := applyDateRange(query, "date", req.Start, req.End)
	if err != nil {
		return nil, err
	}

	var total int64
	query.Count(&total)

	var expenses []models.ExpenseLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("date DESC, id DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}

	return &ExpenseListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    expenses,
	}, nil
}

// CreateExpense records one row of ad spend
func (s *MarketingService) CreateExpense(projectID uint, req *CreateExpenseRequest) (*models.ExpenseLog, error) {
	if err := s.checkProject(projectID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	if req.CampaignID != nil {
		if _, err := s.GetCampaign(projectID, *req.CampaignID); err != nil {
			return nil, err
		}
	}

	expense := models.ExpenseLog{
		ProjectID:   projectID,
		CampaignID:  req.CampaignID,
		Date:        date,
		Channel:     req.Channel,
		Amount:      req.Amount,
		Clicks:      req.Clicks,
		Impressions: req.Impressions,
		Region:      req.Region,
		Country:     req.Country,
		Notes:       req.Notes,
	}

	if err := s.db.Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense updates an expense log with only the provided fields
func (s *MarketingService) UpdateExpense(projectID, id uint, req *UpdateExpenseRequest) (*models.ExpenseLog, error) {
	var expense models.ExpenseLog
	err := s.db.Where("id = ? AND project_id = ?", id, projectID).First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("expense not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.CampaignID != nil {
		if *req.CampaignID == 0 {
			updates["campaign_id"] = nil
		} else {
			if _, err := s.GetCampaign(projectID, *req.CampaignID); err != nil {
				return nil, err
			}
			updates["campaign_id"] = *req.CampaignID
		}
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
		}
		updates["date"] = date
	}
	if req.Channel != "" {
		updates["channel"] = req.Channel
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Clicks != nil {
		updates["clicks"] = *req.Clicks
	}
	if req.Impressions != nil {
		updates["impressions"] = *req.Impressions
	}
	if req.Region != "" {
		updates["region"] = req.Region
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&expense).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(&expense, id)
	return &expense, nil
}

// DeleteExpense removes an expense log
func (s *MarketingService) DeleteExpense(projectID, id uint) error {
	result := s.db.Where("project_id = ?", projectID).Delete(&models.ExpenseLog{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("expense not found")
	}
	return nil
}

// --- Leads ---

type LeadListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=new contacted qualified won lost"`
	Channel    string `form:"channel"`
	CampaignID uint   `form:"campaign_id"`
	Search     string `form:"search"`
}

type LeadListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Lead `json:"items"`
}

type CreateLeadRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Phone       string  `json:"phone"`
	Channel     string  `json:"channel"`
	UTMSource   string  `json:"utm_source"`
	UTMMedium   string  `json:"utm_medium"`
	UTMCampaign string  `json:"utm_campaign"`
	GCLID       string  `json:"gclid"`
	FBCLID      string  `json:"fbclid"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	Value       float64 `json:"value"`
}

type UpdateLeadRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email" binding:"omitempty,email"`
	Phone   string   `json:"phone"`
	Channel string   `json:"channel"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Status  string   `json:"status" binding:"omitempty,oneof=new contacted qualified won lost"`
	Value   *float64 `json:"value"`
}

// ListLeads returns paginated leads, newest first
func (s *MarketingService) ListLeads(projectID uint, req *LeadListRequest) (*LeadListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	query := s.db.Model(&models.Lead{}).Where("project_id = ?", projectID)

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Channel != "" {
		query = query.Where("channel = ?", req.Channel)
	}
	if req.CampaignID != 0 {
		query = query.Where("campaign_id = ?", req.CampaignID)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var leads []models.Lead
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC, id DESC").Find(&leads).Error; err != nil {
		return nil, err
	}

	return &LeadListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    leads,
	}, nil
}

// GetLead returns one lead scoped to its project
func (s *MarketingService) GetLead(projectID, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.Where("id = ? AND project_id = ?", id, projectID).First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("lead not found")
		}
		return nil, err
	}
	return &lead, nil
}

// CreateLead records a lead and attributes it to a campaign once, at
// insert. The project owner is notified about new leads.
func (s *MarketingService) CreateLead(projectID, userID uint, req *CreateLeadRequest) (*models.Lead, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, err
	}

	lead := models.Lead{
		ProjectID:   projectID,
		CampaignID:  s.attributeCampaign(projectID, req.UTMCampaign),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Channel:     req.Channel,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		GCLID:       req.GCLID,
		FBCLID:      req.FBCLID,
		Region:      req.Region,
		Country:     req.Country,
		Status:      models.LeadStatusNew,
		Value:       req.Value,
	}

	if err := s.db.Create(&lead).Error; err != nil {
		return nil, err
	}

	s.notifyLeadCreated(&project, &lead, userID)
	return &lead, nil
}

// UpdateLead updates a lead. Moving to won stamps ConvertedAt once.
// Attribution is never recomputed here.
func (s *MarketingService) UpdateLead(projectID, id uint, req *UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.GetLead(projectID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Channel != "" {
		updates["channel"] = req.Channel
	}
	if req.Region != "" {
		updates["region"] = req.Region
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}
	if req.Status != "" {
		updates["status"] = req.Status
		if req.Status == models.LeadStatusWon && lead.ConvertedAt == nil {
			updates["converted_at"] = time.Now()
		}
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}

	if len(updates) > 0 {
		if err := s.db.Model(lead).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(lead, id)
	return lead, nil
}

// DeleteLead removes a lead
func (s *MarketingService) DeleteLead(projectID, id uint) error {
	result := s.db.Where("project_id = ?", projectID).Delete(&models.Lead{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("lead not found")
	}
	return nil
}

// --- Attribution ---

// attributeCampaign resolves a lead's campaign from its utm_campaign
// value. Best effort: a failed lookup or no match leaves the lead
// unattributed, and campaign edits never backfill.
func (s *MarketingService) attributeCampaign(projectID uint, utmCampaign string) *uint {
	key := normalizeCampaignKey(utmCampaign)
	if key == "" {
		return nil
	}

	var campaigns []models.Campaign
	if err := s.db.Where("project_id = ?", projectID).Order("id ASC").Find(&campaigns).Error; err != nil {
		logger.Warnf("[Marketing] attribution lookup failed: %v", err)
		return nil
	}

	return matchCampaign(key, campaigns)
}

// matchCampaign compares a normalized lead key against campaigns by
// equality first, then substring containment in either direction.
// First match wins per pass.
func matchCampaign(key string, campaigns []models.Campaign) *uint {
	for i := range campaigns {
		if campaignKey(&campaigns[i]) == key {
			return &campaigns[i].ID
		}
	}
	for i := range campaigns {
		ck := campaignKey(&campaigns[i])
		if ck == "" {
			continue
		}
		if strings.Contains(key, ck) || strings.Contains(ck, key) {
			return &campaigns[i].ID
		}
	}
	return nil
}

// campaignKey is the campaign's matchable identity: its utm_campaign
// when set, otherwise its name
func campaignKey(c *models.Campaign) string {
	if c.UTMCampaign != "" {
		return normalizeCampaignKey(c.UTMCampaign)
	}
	return normalizeCampaignKey(c.Name)
}

// normalizeCampaignKey lowercases, trims and collapses runs of spaces,
// dashes and underscores so "Summer-Sale_2024" and "summer sale 2024"
// compare equal
func normalizeCampaignKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if r == ' ' || r == '-' || r == '_' {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte(' ')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// --- Shared helpers ---

func (s *MarketingService) checkProject(projectID uint) error {
	var count int64
	s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count)
	if count == 0 {
		return errors.New("project not found")
	}
	return nil
}

// applyDateRange adds inclusive start/end date bounds to a query. End
// covers the whole day.
func applyDateRange(query *gorm.DB, column, start, end string) (*gorm.DB, error) {
	if start != "" {
		startDate, err := time.Parse("2006-01-02", start)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
		}
		query = query.Where(column+" >= ?", startDate)
	}
	if end != "" {
		endDate, err := time.Parse("2006-01-02", end)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", end)
		}
		query = query.Where(column+" < ?", endDate.AddDate(0, 0, 1))
	}
	return query, nil
}

func (s *MarketingService) notifyLeadCreated(project *models.Project, lead *models.Lead, actorID uint) {
	if project.OwnerID == 0 || project.OwnerID == actorID {
		return
	}

	name := lead.Name
	if name == "" {
		name = lead.Email
	}
	if name == "" {
		name = "unnamed lead"
	}

	notification := models.Notification{
		RecipientID: project.OwnerID,
		Type:        models.NotificationLeadCreated,
		Title:       fmt.Sprintf("New lead for %s: %s", project.Name, name),
		Body:        fmt.Sprintf("Channel: %s", lead.Channel),
		RefType:     "lead",
		RefID:       &lead.ID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		logger.Warnf("[Marketing] lead notification for user %d failed: %v", project.OwnerID, err)
		return
	}
	PublishNotificationEvent(notification.RecipientID, notification.ID, notification)
}
