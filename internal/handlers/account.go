package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/middleware"
	"github.com/danodev/daworks/internal/services"
	"github.com/danodev/daworks/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AccountHandler struct {
	accountService *services.AccountService
	storage        *services.StorageService
}

func NewAccountHandler(db *gorm.DB, storage *services.StorageService) *AccountHandler {
	return &AccountHandler{
		accountService: services.NewAccountService(db, storage),
		storage:        storage,
	}
}

func clientParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return 0, false
	}
	return uint(id), true
}

// --- Clients ---

// ListClients returns paginated account clients
// GET /api/accounts/clients
func (h *AccountHandler) ListClients(c *gin.Context) {
	var req services.AccountClientListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.accountService.ListClients(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetClient returns one client with its contract fields
// GET /api/accounts/clients/:id
func (h *AccountHandler) GetClient(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	client, err := h.accountService.GetClient(clientID)
	if err != nil {
		response.NotFound(c, "client not found")
		return
	}

	response.Success(c, client)
}

// CreateClient creates an account client
// POST /api/accounts/clients
func (h *AccountHandler) CreateClient(c *gin.Context) {
	var req services.CreateAccountClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client, err := h.accountService.CreateClient(&req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, client)
}

// UpdateClient updates an account client
// PUT /api/accounts/clients/:id
func (h *AccountHandler) UpdateClient(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	var req services.UpdateAccountClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client, err := h.accountService.UpdateClient(clientID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, client)
}

// DeleteClient deletes a client together with its documents and
// statement rows
// DELETE /api/accounts/clients/:id
func (h *AccountHandler) DeleteClient(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteClient(clientID); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "client deleted successfully"})
}

// --- Documents ---

// ListDocuments returns a client's uploaded documents
// GET /api/accounts/clients/:id/documents
func (h *AccountHandler) ListDocuments(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	docs, err := h.accountService.ListDocuments(clientID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, docs)
}

// UploadDocument stores a contract or invoice file for the client
// POST /api/accounts/clients/:id/documents
func (h *AccountHandler) UploadDocument(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	if fileHeader.Size > h.storage.MaxBytes() {
		response.BadRequest(c, "file exceeds the upload size limit")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer f.Close()

	userID := middleware.GetUserID(c)
	doc, err := h.accountService.UploadDocument(
		clientID, userID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		f,
	)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, doc)
}

// DeleteDocument removes a document and its file on disk
// DELETE /api/accounts/clients/:id/documents/:doc_id
func (h *AccountHandler) DeleteDocument(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}
	docID, err := strconv.ParseUint(c.Param("doc_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	if err := h.accountService.DeleteDocument(clientID, uint(docID)); err != nil {
		response.NotFound(c, "document not found")
		return
	}

	response.Success(c, gin.H{"message": "document deleted successfully"})
}

// --- Adhoc requirements ---

// ListAdhoc returns adhoc requirements, optionally filtered by status
// GET /api/accounts/clients/:id/adhoc
func (h *AccountHandler) ListAdhoc(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	items, err := h.accountService.ListAdhoc(clientID, c.Query("status"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, items)
}

// CreateAdhoc records an out-of-contract requirement
// POST /api/accounts/clients/:id/adhoc
func (h *AccountHandler) CreateAdhoc(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	var req services.CreateAdhocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.accountService.CreateAdhoc(clientID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, item)
}

// UpdateAdhoc updates an adhoc requirement. Marking one billed copies
// it into the statement.
// PUT /api/accounts/clients/:id/adhoc/:adhoc_id
func (h *AccountHandler) UpdateAdhoc(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}
	adhocID, err := strconv.ParseUint(c.Param("adhoc_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid adhoc id")
		return
	}

	var req services.UpdateAdhocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.accountService.UpdateAdhoc(clientID, uint(adhocID), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, item)
}

// DeleteAdhoc removes an adhoc requirement
// DELETE /api/accounts/clients/:id/adhoc/:adhoc_id
func (h *AccountHandler) DeleteAdhoc(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}
	adhocID, err := strconv.ParseUint(c.Param("adhoc_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid adhoc id")
		return
	}

	if err := h.accountService.DeleteAdhoc(clientID, uint(adhocID)); err != nil {
		response.NotFound(c, "adhoc requirement not found")
		return
	}

	response.Success(c, gin.H{"message": "adhoc requirement deleted successfully"})
}

// --- Statement ---

// ListStatementItems returns statement rows inside a date range
// GET /api/accounts/clients/:id/statement/items
func (h *AccountHandler) ListStatementItems(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	items, err := h.accountService.ListStatementItems(clientID, c.Query("start"), c.Query("end"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, items)
}

// CreateStatementItem adds a billing row
// POST /api/accounts/clients/:id/statement/items
func (h *AccountHandler) CreateStatementItem(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	var req services.CreateStatementItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.accountService.CreateStatementItem(clientID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, item)
}

// UpdateStatementItem updates a billing row
// PUT /api/accounts/clients/:id/statement/items/:item_id
func (h *AccountHandler) UpdateStatementItem(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	var req services.UpdateStatementItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.accountService.UpdateStatementItem(clientID, uint(itemID), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, item)
}

// DeleteStatementItem removes a billing row
// DELETE /api/accounts/clients/:id/statement/items/:item_id
func (h *AccountHandler) DeleteStatementItem(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	if err := h.accountService.DeleteStatementItem(clientID, uint(itemID)); err != nil {
		response.NotFound(c, "statement item not found")
		return
	}

	response.Success(c, gin.H{"message": "statement item deleted successfully"})
}

// Statement returns the aggregated statement report for a date range
// GET /api/accounts/clients/:id/statement
func (h *AccountHandler) Statement(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	report, err := h.accountService.Statement(clientID, c.Query("start"), c.Query("end"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, report)
}

// ExportStatement downloads the statement as an XLSX workbook
// GET /api/accounts/clients/:id/statement/export
func (h *AccountHandler) ExportStatement(c *gin.Context) {
	clientID, ok := clientParam(c)
	if !ok {
		return
	}

	data, fileName, err := h.accountService.StatementXLSX(clientID, c.Query("start"), c.Query("end"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, xlsxContentType, data)
}
