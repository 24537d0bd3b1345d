package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

// Vertical layout constants for column stacking. The column header is
// reserved space above the first slot; the gap separates stacked
// children.
const (
	columnHeaderHeight = 40.0
	columnChildGap     = 8.0
)

// minElementSize is the smallest width/height an element may keep after
// a resize.
const minElementSize = 20.0

// Z-order operations
const (
	ZOrderFront    = "front"
	ZOrderBack     = "back"
	ZOrderForward  = "forward"
	ZOrderBackward = "backward"
)

type BoardService struct {
	db *gorm.DB
}

func NewBoardService(db *gorm.DB) *BoardService {
	return &BoardService{db: db}
}

type BoardListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Title    string `form:"title"`
}

type BoardListResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Items    []models.Board `json:"items"`
}

type CreateBoardRequest struct {
	Title      string `json:"title" binding:"required"`
	Background string `json:"background"`
}

type UpdateBoardRequest struct {
	Title      string `json:"title"`
	Background string `json:"background"`
}

type CreateElementRequest struct {
	Type     string         `json:"type" binding:"required"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Content  string         `json:"content"`
	Metadata models.JSONMap `json:"metadata"`
}

// UpdateElementRequest carries a partial element transform. Pointer
// fields distinguish "not sent" from zero values.
type UpdateElementRequest struct {
	X        *float64       `json:"x"`
	Y        *float64       `json:"y"`
	Width    *float64       `json:"width"`
	Height   *float64       `json:"height"`
	Content  *string        `json:"content"`
	Metadata models.JSONMap `json:"metadata"`
}

type ReparentRequest struct {
	ColumnID   uint `json:"column_id" binding:"required"`
	ChildIndex int  `json:"child_index"`
}

// List returns the user's boards
func (s *BoardService) List(ownerID uint, req *BoardListRequest) (*BoardListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var boards []models.Board
	var total int64

	query := s.db.Model(&models.Board{}).Where("owner_id = ?", ownerID)
	if req.Title != "" {
		query = query.Where("title LIKE ?", "%"+req.Title+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("updated_at DESC").Find(&boards).Error; err != nil {
		return nil, err
	}

	return &BoardListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    boards,
	}, nil
}

// Get returns a board with its elements ordered by z_index then id.
// Boards are visible to every authenticated user; only mutation of the
// board record itself is owner-scoped.
func (s *BoardService) Get(id uint) (*models.Board, error) {
	var board models.Board
	err := s.db.Preload("Elements", func(db *gorm.DB) *gorm.DB {
		return db.Order("z_index ASC, id ASC")
	}).First(&board, id).Error
	if err != nil {
		return nil, errors.New("board not found")
	}
	return &board, nil
}

// Create creates a new board
func (s *BoardService) Create(ownerID uint, req *CreateBoardRequest) (*models.Board, error) {
	board := models.Board{
		OwnerID:    ownerID,
		Title:      req.Title,
		Background: req.Background,
	}
	if err := s.db.Create(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// Update updates board title/background
func (s *BoardService) Update(ownerID, id uint, req *UpdateBoardRequest) (*models.Board, error) {
	board, err := s.getOwnedBoard(ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Background != "" {
		updates["background"] = req.Background
	}
	if len(updates) > 0 {
		if err := s.db.Model(board).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return board, nil
}

// Delete removes a board with its elements, comments and mentions
func (s *BoardService) Delete(ownerID, id uint) error {
	board, err := s.getOwnedBoard(ownerID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardElement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.Mention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(board).Error
	})
}

func (s *BoardService) getOwnedBoard(ownerID, id uint) (*models.Board, error) {
	var board models.Board
	if err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&board).Error; err != nil {
		return nil, errors.New("board not found")
	}
	return &board, nil
}

func (s *BoardService) getBoard(id uint) (*models.Board, error) {
	var board models.Board
	if err := s.db.First(&board, id).Error; err != nil {
		return nil, errors.New("board not found")
	}
	return &board, nil
}

func (s *BoardService) getBoardElement(boardID, elementID uint) (*models.BoardElement, error) {
	var element models.BoardElement
	if err := s.db.Where("id = ? AND board_id = ?", elementID, boardID).First(&element).Error; err != nil {
		return nil, errors.New("element not found")
	}
	return &element, nil
}

// CreateElement adds an element to a board. New elements land on top of
// the existing z-order.
func (s *BoardService) CreateElement(boardID uint, req *CreateElementRequest) (*models.BoardElement, error) {
	board, err := s.getBoard(boardID)
	if err != nil {
		return nil, err
	}
	if !models.ValidElementType(req.Type) {
		return nil, fmt.Errorf("unknown element type: %s", req.Type)
	}

	width := req.Width
	height := req.Height
	if width < minElementSize {
		width = minElementSize
	}
	if height < minElementSize {
		height = minElementSize
	}

	var maxZ int
	s.db.Model(&models.BoardElement{}).Where("board_id = ?", board.ID).
		Select("COALESCE(MAX(z_index), -1)").Scan(&maxZ)

	element := models.BoardElement{
		BoardID:  board.ID,
		Type:     req.Type,
		X:        req.X,
		Y:        req.Y,
		Width:    width,
		Height:   height,
		ZIndex:   maxZ + 1,
		Content:  req.Content,
		Metadata: req.Metadata,
	}
	if element.Metadata == nil {
		element.Metadata = models.JSONMap{}
	}

	if err := s.db.Create(&element).Error; err != nil {
		return nil, err
	}

	PublishBoardEvent(board.ID, map[string]interface{}{"action": "created", "element": element})
	return &element, nil
}

// UpdateElement applies a partial transform: position, clamped size,
// content and a metadata merge. Rotation lives only in metadata and
// never rewrites the stored rectangle.
func (s *BoardService) UpdateElement(boardID, elementID uint, req *UpdateElementRequest) (*models.BoardElement, error) {
	if _, err := s.getBoard(boardID); err != nil {
		return nil, err
	}
	element, err := s.getBoardElement(boardID, elementID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.X != nil {
		updates["x"] = *req.X
	}
	if req.Y != nil {
		updates["y"] = *req.Y
	}
	if req.Width != nil {
		width := *req.Width
		if width < minElementSize {
			width = minElementSize
		}
		updates["width"] = width
	}
	if req.Height != nil {
		height := *req.Height
		if height < minElementSize {
			height = minElementSize
		}
		updates["height"] = height
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if len(req.Metadata) > 0 {
		merged := element.Metadata
		if merged == nil {
			merged = models.JSONMap{}
		}
		for k, v := range req.Metadata {
			if v == nil {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
		updates["metadata"] = merged
	}

	if len(updates) > 0 {
		if err := s.db.Model(element).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	PublishBoardEvent(boardID, map[string]interface{}{"action": "updated", "element": element})
	return element, nil
}

// DeleteElement removes an element. Deleting a column orphans its
// children rather than deleting them.
func (s *BoardService) DeleteElement(boardID, elementID uint) error {
	if _, err := s.getBoard(boardID); err != nil {
		return err
	}
	element, err := s.getBoardElement(boardID, elementID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if element.Type == models.ElementColumn {
			if err := tx.Model(&models.BoardElement{}).
				Where("parent_id = ?", element.ID).
				Update("parent_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(element).Error
	})
	if err != nil {
		return err
	}

	PublishBoardEvent(boardID, map[string]interface{}{"action": "deleted", "element_id": elementID})
	return nil
}

// SetZOrder applies one of the four z-order operations to an element.
// forward/backward swap with the immediate z-sorted neighbor and no-op
// at the extremes.
func (s *BoardService) SetZOrder(boardID, elementID uint, op string) (*models.BoardElement, error) {
	if _, err := s.getBoard(boardID); err != nil {
		return nil, err
	}
	element, err := s.getBoardElement(boardID, elementID)
	if err != nil {
		return nil, err
	}

	var elements []models.BoardElement
	if err := s.db.Where("board_id = ?", boardID).
		Order("z_index ASC, id ASC").Find(&elements).Error; err != nil {
		return nil, err
	}

	pos := -1
	for i := range elements {
		if elements[i].ID == element.ID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, errors.New("element not found")
	}

	switch op {
	case ZOrderFront:
		maxZ := elements[len(elements)-1].ZIndex
		element.ZIndex = maxZ + 1
		if err := s.db.Model(element).Update("z_index", element.ZIndex).Error; err != nil {
			return nil, err
		}
	case ZOrderBack:
		minZ := elements[0].ZIndex
		z := minZ - 1
		if z < 0 {
			z = 0
		}
		element.ZIndex = z
		if err := s.db.Model(element).Update("z_index", element.ZIndex).Error; err != nil {
			return nil, err
		}
	case ZOrderForward:
		if pos == len(elements)-1 {
			return element, nil
		}
		neighbor := elements[pos+1]
		if err := s.swapZ(element, &neighbor); err != nil {
			return nil, err
		}
	case ZOrderBackward:
		if pos == 0 {
			return element, nil
		}
		neighbor := elements[pos-1]
		if err := s.swapZ(element, &neighbor); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown z-order operation: %s", op)
	}

	PublishBoardEvent(boardID, map[string]interface{}{"action": "z_order", "element": element})
	return element, nil
}

func (s *BoardService) swapZ(a, b *models.BoardElement) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		az, bz := a.ZIndex, b.ZIndex
		if err := tx.Model(&models.BoardElement{}).Where("id = ?", a.ID).
			Update("z_index", bz).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.BoardElement{}).Where("id = ?", b.ID).
			Update("z_index", az).Error; err != nil {
			return err
		}
		a.ZIndex = bz
		b.ZIndex = az
		return nil
	})
}

// sortByChildIndex orders column children by their metadata childIndex,
// falling back to id order for ties.
func sortByChildIndex(elements []models.BoardElement) {
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].ChildIndex() < elements[j].ChildIndex()
	})
}

// columnSlotY computes the stacked Y position for a child dropped at
// index: the column header, then every earlier sibling's height plus
// the gap.
func columnSlotY(column *models.BoardElement, siblings []models.BoardElement, index int) float64 {
	y := column.Y + columnHeaderHeight
	for i := 0; i < index && i < len(siblings); i++ {
		y += siblings[i].Height + columnChildGap
	}
	return y
}

// Reparent drops an element into a column at the given child index. The
// whole move runs in one transaction: detaching from the previous
// parent closes that gap, siblings at or after the drop index shift by
// +1, and the child's Y is recomputed to the column's stacked slot.
func (s *BoardService) Reparent(boardID, elementID uint, req *ReparentRequest) (*models.BoardElement, error) {
	if _, err := s.getBoard(boardID); err != nil {
		return nil, err
	}
	element, err := s.getBoardElement(boardID, elementID)
	if err != nil {
		return nil, err
	}
	if element.ID == req.ColumnID {
		return nil, errors.New("element cannot be its own parent")
	}
	if element.Type == models.ElementColumn {
		return nil, errors.New("columns cannot be nested")
	}

	column, err := s.getBoardElement(boardID, req.ColumnID)
	if err != nil {
		return nil, errors.New("column not found")
	}
	if column.Type != models.ElementColumn {
		return nil, errors.New("target element is not a column")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if element.ParentID != nil {
			if err := closeSiblingGap(tx, *element.ParentID, element); err != nil {
				return err
			}
		}

		var siblings []models.BoardElement
		if err := tx.Where("board_id = ? AND parent_id = ? AND id != ?",
			boardID, column.ID, element.ID).Find(&siblings).Error; err != nil {
			return err
		}
		sortByChildIndex(siblings)

		index := req.ChildIndex
		if index < 0 {
			index = 0
		}
		if index > len(siblings) {
			index = len(siblings)
		}

		// Reindex compactly around the insertion point. A sibling whose
		// stored index was lost (metadata edits can drop the key) sorts
		// last and picks up a real index here instead of the sentinel.
		for i := range siblings {
			newIndex := i
			if i >= index {
				newIndex = i + 1
			}
			if siblings[i].ChildIndex() != newIndex {
				siblings[i].SetChildIndex(newIndex)
				if err := tx.Model(&models.BoardElement{}).Where("id = ?", siblings[i].ID).
					Update("metadata", siblings[i].Metadata).Error; err != nil {
					return err
				}
			}
		}

		element.ParentID = &column.ID
		element.SetChildIndex(index)
		element.Y = columnSlotY(column, siblings, index)

		return tx.Model(&models.BoardElement{}).Where("id = ?", element.ID).
			Updates(map[string]interface{}{
				"parent_id": column.ID,
				"metadata":  element.Metadata,
				"y":         element.Y,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	PublishBoardEvent(boardID, map[string]interface{}{"action": "reparented", "element": element})
	return element, nil
}

// Detach removes an element from its parent column, closing the gap it
// leaves behind.
func (s *BoardService) Detach(boardID, elementID uint) (*models.BoardElement, error) {
	if _, err := s.getBoard(boardID); err != nil {
		return nil, err
	}
	element, err := s.getBoardElement(boardID, elementID)
	if err != nil {
		return nil, err
	}
	if element.ParentID == nil {
		return element, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := closeSiblingGap(tx, *element.ParentID, element); err != nil {
			return err
		}

		element.ParentID = nil
		if element.Metadata != nil {
			delete(element.Metadata, "childIndex")
		}
		return tx.Model(&models.BoardElement{}).Where("id = ?", element.ID).
			Updates(map[string]interface{}{
				"parent_id": nil,
				"metadata":  element.Metadata,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	PublishBoardEvent(boardID, map[string]interface{}{"action": "detached", "element": element})
	return element, nil
}

// closeSiblingGap reindexes the remaining siblings 0..n-1 in their
// current order, closing the gap the departing element leaves.
func closeSiblingGap(tx *gorm.DB, parentID uint, departing *models.BoardElement) error {
	var siblings []models.BoardElement
	if err := tx.Where("parent_id = ? AND id != ?", parentID, departing.ID).
		Find(&siblings).Error; err != nil {
		return err
	}
	sortByChildIndex(siblings)
	for i := range siblings {
		if siblings[i].ChildIndex() != i {
			siblings[i].SetChildIndex(i)
			if err := tx.Model(&models.BoardElement{}).Where("id = ?", siblings[i].ID).
				Update("metadata", siblings[i].Metadata).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
