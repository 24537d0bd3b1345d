package services

import (
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// AccountService manages billing clients, their documents, ad-hoc
// requirements and statement items.
type AccountService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewAccountService(db *gorm.DB, storage *StorageService) *AccountService {
	return &AccountService{db: db, storage: storage}
}

type AccountClientListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
}

type AccountClientListResponse struct {
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Items    []models.AccountClient `json:"items"`
}

type CreateAccountClientRequest struct {
	CompanyName    string `json:"company_name" binding:"required"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	TaxID          string `json:"tax_id"`
	Status         string `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes          string `json:"notes"`
}

type UpdateAccountClientRequest struct {
	CompanyName    string `json:"company_name"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	TaxID          string `json:"tax_id"`
	Status         string `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes          string `json:"notes"`
}

// ListClients returns paginated account clients
func (s *AccountService) ListClients(req *AccountClientListRequest) (*AccountClientListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var clients []models.AccountClient
	var total int64

	query := s.db.Model(&models.AccountClient{})

	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("company_name LIKE ? OR contact_person LIKE ? OR email LIKE ?", like, like, like)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("company_name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}

	return &AccountClientListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    clients,
	}, nil
}

// GetClient returns one account client
func (s *AccountService) GetClient(id uint) (*models.AccountClient, error) {
	var client models.AccountClient
	if err := s.db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("account client not found")
		}
		return nil, err
	}
	return &client, nil
}

// CreateClient creates a new account client
func (s *AccountService) CreateClient(req *CreateAccountClientRequest) (*models.AccountClient, error) {
	status := req.Status
	if status == "" {
		status = "active"
	}

	client := models.AccountClient{
		CompanyName:    req.CompanyName,
		ContactPerson:  req.ContactPerson,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		TaxID:          req.TaxID,
		Status:         status,
		Notes:          req.Notes,
	}

	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClient updates a client with only the provided fields
func (s *AccountService) UpdateClient(id uint, req *UpdateAccountClientRequest) (*models.AccountClient, error) {
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.CompanyName != "" {
		updates["company_name"] = req.CompanyName
	}
	if req.ContactPerson != "" {
		updates["contact_person"] = req.ContactPerson
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.BillingAddress != "" {
		updates["billing_address"] = req.BillingAddress
	}
	if req.TaxID != "" {
		updates["tax_id"] = req.TaxID
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(client).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return client, nil
}

// DeleteClient removes a client together with its documents, ad-hoc
// requirements and statement items
func (s *AccountService) DeleteClient(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.AccountClient{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("account client not found")
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.ClientDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.AdhocRequirement{}).Error; err != nil {
			return err
		}
		return tx.Where("client_id = ?", id).Delete(&models.StatementItem{}).Error
	})
}

// ListDocuments returns a client's documents, newest first
func (s *AccountService) ListDocuments(clientID uint) ([]models.ClientDocument, error) {
	if _, err := s.GetClient(clientID); err != nil {
		return nil, err
	}

	var docs []models.ClientDocument
	if err := s.db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument stores the file and records its metadata
func (s *AccountService) UploadDocument(clientID, uploadedBy uint, fileName, contentType string, size int64, r io.Reader) (*models.ClientDocument, error) {
	if _, err := s.GetClient(clientID); err != nil {
		return nil, err
	}

	storedName, publicURL, err := s.storage.Save(fileName, size, r)
	if err != nil {
		return nil, err
	}

	doc := models.ClientDocument{
		ClientID:    clientID,
		FileName:    fileName,
		StoredName:  storedName,
		PublicURL:   publicURL,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  uploadedBy,
	}

	if err := s.db.Create(&doc).Error; err != nil {
		s.storage.Delete(storedName)
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes the metadata row and best-effort removes the
// file from disk
func (s *AccountService) DeleteDocument(clientID, docID uint) error {
	var doc models.ClientDocument
	err := s.db.Where("id = ? AND client_id = ?", docID, clientID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("document not found")
		}
		return err
	}

	if err := s.db.Delete(&doc).Error; err != nil {
		return err
	}
	if err := s.storage.Delete(doc.StoredName); err != nil {
		logger.Warnf("[Account] removing stored file %s failed: %v", doc.StoredName, err)
	}
	return nil
}

type CreateAdhocRequest struct {
	Title   string  `json:"title" binding:"required"`
	Details string  `json:"details"`
	Status  string  `json:"status" binding:"omitempty,oneof=pending in_progress delivered"`
	Fee     float64 `json:"fee" binding:"omitempty,min=0"`
}

type UpdateAdhocRequest struct {
	Title   string   `json:"title"`
	Details string   `json:"details"`
	Status  string   `json:"status" binding:"omitempty,oneof=pending in_progress delivered"`
	Fee     *float64 `json:"fee" binding:"omitempty,min=0"`
}

// ListAdhoc returns a client's ad-hoc requirements
func (s *AccountService) ListAdhoc(clientID uint, status string) ([]models.AdhocRequirement, error) {
	if _, err := s.GetClient(clientID); err != nil {
		return nil, err
	}

	query := s.db.Where("client_id = ?", clientID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reqs []models.AdhocRequirement
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// CreateAdhoc creates a new ad-hoc requirement
func (s *AccountService) CreateAdhoc(clientID uint, req *CreateAdhocRequest) (*models.AdhocRequirement, error) {
	if _, err := s.GetClient(clientID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = "pending"
	}

	adhoc := models.AdhocRequirement{
		ClientID: clientID,
		Title:    req.Title,
		Details:  req.Details,
		Status:   status,
		Fee:      req.Fee,
	}

	if err := s.db.Create(&adhoc).Error; err != nil {
		return nil, err
	}
	return &adhoc, nil
}

// UpdateAdhoc updates an ad-hoc requirement with only the provided
// fields
func (s *AccountService) UpdateAdhoc(clientID, id uint, req *UpdateAdhocRequest) (*models.AdhocRequirement, error) {
	var adhoc models.AdhocRequirement
	err := s.db.Where("id = ? AND client_id = ?", id, clientID).First(&adhoc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("ad-hoc requirement not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Details != "" {
		updates["details"] = req.Details
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Fee != nil {
		updates["fee"] = *req.Fee
	}

	if len(updates) > 0 {
		if err := s.db.Model(&adhoc).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &adhoc, nil
}

// DeleteAdhoc removes an ad-hoc requirement
func (s *AccountService) DeleteAdhoc(clientID, id uint) error {
	result := s.db.Where("client_id = ?", clientID).Delete(&models.AdhocRequirement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("ad-hoc requirement not found")
	}
	return nil
}

type CreateStatementItemRequest struct {
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"omitempty,min=0"`
	UnitAmount  float64 `json:"unit_amount" binding:"omitempty,min=0"`
	Amount      float64 `json:"amount" binding:"omitempty,min=0"`
}

type UpdateStatementItemRequest struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity" binding:"omitempty,min=0"`
	UnitAmount  *float64 `json:"unit_amount" binding:"omitempty,min=0"`
	Amount      *float64 `json:"amount" binding:"omitempty,min=0"`
}

// ListStatementItems returns a client's statement items in the date
// range, oldest first
func (s *AccountService) ListStatementItems(clientID uint, start, end string) ([]models.StatementItem, error) {
	if _, err := s.GetClient(clientID); err != nil {
		return nil, err
	}

	query := s.db.Where("client_id = ?", clientID)
	query, err := applyDateRange(query, "date", start, end)
	if err != nil {
		return nil, err
	}

	var items []models.StatementItem
	if err := query.Order("date ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateStatementItem records one statement line. A zero amount is
// computed from quantity times unit amount.
func (s *AccountService) CreateStatementItem(clientID uint, req *CreateStatementItemRequest) (*models.StatementItem, error) {
	if _, err := s.GetClient(clientID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, errors.New("invalid date, expected YYYY-MM-DD")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	amount := req.Amount
	if amount == 0 {
		amount = quantity * req.UnitAmount
	}

	item := models.StatementItem{
		ClientID:    clientID,
		Date:        date,
		Description: req.Description,
		Quantity:    quantity,
		UnitAmount:  req.UnitAmount,
		Amount:      amount,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStatementItem updates a statement line with only the provided
// fields. Changing quantity or unit amount recomputes the amount
// unless an explicit amount is also given.
func (s *AccountService) UpdateStatementItem(clientID, id uint, req *UpdateStatementItemRequest) (*models.StatementItem, error) {
	var item models.StatementItem
	err := s.db.Where("id = ? AND client_id = ?", id, clientID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("statement item not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, errors.New("invalid date, expected YYYY-MM-DD")
		}
		updates["date"] = date
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	quantity := item.Quantity
	unitAmount := item.UnitAmount
	if req.Quantity != nil {
		quantity = *req.Quantity
		updates["quantity"] = quantity
	}
	if req.UnitAmount != nil {
		unitAmount = *req.UnitAmount
		updates["unit_amount"] = unitAmount
	}

	switch {
	case req.Amount != nil:
		updates["amount"] = *req.Amount
	case req.Quantity != nil || req.UnitAmount != nil:
		updates["amount"] = quantity * unitAmount
	}

	if len(updates) > 0 {
		if err := s.db.Model(&item).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.First(&item, id)
	return &item, nil
}

// DeleteStatementItem removes a statement line
func (s *AccountService) DeleteStatementItem(clientID, id uint) error {
	result := s.db.Where("client_id = ?", clientID).Delete(&models.StatementItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("statement item not found")
	}
	return nil
}

// StatementReport is a client's statement of account for a period.
// Delivered ad-hoc requirements bill alongside the itemized lines.
type StatementReport struct {
	Client     *models.AccountClient     `json:"client"`
	Start      string                    `json:"start"`
	End        string                    `json:"end"`
	Items      []models.StatementItem    `json:"items"`
	ItemsTotal float64                   `json:"items_total"`
	Adhoc      []models.AdhocRequirement `json:"adhoc"`
	AdhocTotal float64                   `json:"adhoc_total"`
	GrandTotal float64                   `json:"grand_total"`
}

// Statement assembles the statement of account for a client
func (s *AccountService) Statement(clientID uint, start, end string) (*StatementReport, error) {
	client, err := s.GetClient(clientID)
	if err != nil {
		return nil, err
	}

	items, err := s.ListStatementItems(clientID, start, end)
	if err != nil {
		return nil, err
	}

	adhocQuery := s.db.Where("client_id = ? AND status = ?", clientID, "delivered")
	adhocQuery, err = applyDateRange(adhocQuery, "updated_at", start, end)
	if err != nil {
		return nil, err
	}
	var adhoc []models.AdhocRequirement
	if err := adhocQuery.Order("updated_at ASC").Find(&adhoc).Error; err != nil {
		return nil, err
	}

	report := &StatementReport{
		Client: client,
		Start:  start,
		End:    end,
		Items:  items,
		Adhoc:  adhoc,
	}
	for _, item := range items {
		report.ItemsTotal += item.Amount
	}
	for _, a := range adhoc {
		report.AdhocTotal += a.Fee
	}
	report.GrandTotal = report.ItemsTotal + report.AdhocTotal

	return report, nil
}
