package services

import (
	"testing"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

func newBoardFixture(t *testing.T) (*BoardService, *models.Board) {
	t.Helper()
	db := openTestDB(t, &models.Board{}, &models.BoardElement{})
	svc := NewBoardService(db)
	board, err := svc.Create(1, &CreateBoardRequest{Title: "planning"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	return svc, board
}

func mustCreateElement(t *testing.T, svc *BoardService, boardID uint, req *CreateElementRequest) *models.BoardElement {
	t.Helper()
	element, err := svc.CreateElement(boardID, req)
	if err != nil {
		t.Fatalf("create element: %v", err)
	}
	return element
}

func reloadElement(t *testing.T, db *gorm.DB, id uint) *models.BoardElement {
	t.Helper()
	var element models.BoardElement
	if err := db.First(&element, id).Error; err != nil {
		t.Fatalf("reload element %d: %v", id, err)
	}
	return &element
}

func TestSortByChildIndex(t *testing.T) {
	a := models.BoardElement{ID: 1}
	a.SetChildIndex(2)
	b := models.BoardElement{ID: 2}
	b.SetChildIndex(0)
	c := models.BoardElement{ID: 3}
	c.SetChildIndex(1)

	elements := []models.BoardElement{a, b, c}
	sortByChildIndex(elements)

	expected := []uint{2, 3, 1}
	for i, id := range expected {
		if elements[i].ID != id {
			t.Errorf("elements[%d].ID = %d, expected %d", i, elements[i].ID, id)
		}
	}
}

func TestSortByChildIndex_MissingIndexSortsLast(t *testing.T) {
	withIndex := models.BoardElement{ID: 1}
	withIndex.SetChildIndex(5)
	without := models.BoardElement{ID: 2}

	elements := []models.BoardElement{without, withIndex}
	sortByChildIndex(elements)

	if elements[0].ID != 1 {
		t.Errorf("elements[0].ID = %d, expected 1", elements[0].ID)
	}
	if elements[1].ID != 2 {
		t.Errorf("elements[1].ID = %d, expected 2", elements[1].ID)
	}
}

func TestChildIndexRoundTrip(t *testing.T) {
	element := models.BoardElement{}
	element.SetChildIndex(3)

	if got := element.ChildIndex(); got != 3 {
		t.Errorf("ChildIndex() = %d, expected 3", got)
	}

	// JSON round-trips store numbers as float64.
	element.Metadata["childIndex"] = float64(7)
	if got := element.ChildIndex(); got != 7 {
		t.Errorf("ChildIndex() = %d, expected 7", got)
	}
}

func TestColumnSlotY(t *testing.T) {
	column := &models.BoardElement{
		Type: models.ElementColumn,
		Y:    100,
	}
	siblings := []models.BoardElement{
		{Height: 50},
		{Height: 30},
	}

	tests := []struct {
		name     string
		index    int
		expected float64
	}{
		{
			name:     "first slot is below the header",
			index:    0,
			expected: 100 + columnHeaderHeight,
		},
		{
			name:     "second slot stacks the first sibling",
			index:    1,
			expected: 100 + columnHeaderHeight + 50 + columnChildGap,
		},
		{
			name:     "last slot stacks all siblings",
			index:    2,
			expected: 100 + columnHeaderHeight + 50 + columnChildGap + 30 + columnChildGap,
		},
		{
			name:     "index beyond siblings clamps to the end",
			index:    9,
			expected: 100 + columnHeaderHeight + 50 + columnChildGap + 30 + columnChildGap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := columnSlotY(column, siblings, tt.index); got != tt.expected {
				t.Errorf("columnSlotY() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestColumnSlotY_EmptyColumn(t *testing.T) {
	column := &models.BoardElement{Type: models.ElementColumn, Y: 0}

	if got := columnSlotY(column, nil, 0); got != columnHeaderHeight {
		t.Errorf("columnSlotY() = %v, expected %v", got, columnHeaderHeight)
	}
}

func TestValidElementType(t *testing.T) {
	valid := []string{
		"note", "text", "heading", "image", "todo",
		"rect", "ellipse", "column", "container", "audio",
	}
	for _, typ := range valid {
		if !models.ValidElementType(typ) {
			t.Errorf("ValidElementType(%q) = false, expected true", typ)
		}
	}

	invalid := []string{"", "sticky", "COLUMN", "video"}
	for _, typ := range invalid {
		if models.ValidElementType(typ) {
			t.Errorf("ValidElementType(%q) = true, expected false", typ)
		}
	}
}

func TestUpdateElementRequest_PartialFields(t *testing.T) {
	x := 15.0
	req := &UpdateElementRequest{X: &x}

	if req.X == nil || *req.X != 15.0 {
		t.Error("X should be 15.0")
	}
	if req.Y != nil {
		t.Error("Y should be nil when not sent")
	}
	if req.Width != nil {
		t.Error("Width should be nil when not sent")
	}
	if req.Content != nil {
		t.Error("Content should be nil when not sent")
	}
}

func TestSetZOrder_FrontIsMaxPlusOne(t *testing.T) {
	svc, board := newBoardFixture(t)

	// Creation stacks new elements at z 0, 1, 2.
	bottom := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	top := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	if top.ZIndex != 2 {
		t.Fatalf("top.ZIndex = %d, expected 2", top.ZIndex)
	}

	element, err := svc.SetZOrder(board.ID, bottom.ID, ZOrderFront)
	if err != nil {
		t.Fatalf("SetZOrder(front) error: %v", err)
	}
	if element.ZIndex != 3 {
		t.Errorf("front ZIndex = %d, expected 3 (1 + max z)", element.ZIndex)
	}

	// Front again from the top still bumps past the current max.
	element, err = svc.SetZOrder(board.ID, bottom.ID, ZOrderFront)
	if err != nil {
		t.Fatalf("SetZOrder(front) error: %v", err)
	}
	if element.ZIndex != 4 {
		t.Errorf("second front ZIndex = %d, expected 4", element.ZIndex)
	}
}

func TestSetZOrder_BackFloorsAtZero(t *testing.T) {
	svc, board := newBoardFixture(t)

	mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	mid := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	top := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})

	// Min z is 0, so back cannot go negative.
	element, err := svc.SetZOrder(board.ID, top.ID, ZOrderBack)
	if err != nil {
		t.Fatalf("SetZOrder(back) error: %v", err)
	}
	if element.ZIndex != 0 {
		t.Errorf("back ZIndex = %d, expected floor at 0", element.ZIndex)
	}

	element, err = svc.SetZOrder(board.ID, mid.ID, ZOrderBack)
	if err != nil {
		t.Fatalf("SetZOrder(back) error: %v", err)
	}
	if element.ZIndex != 0 {
		t.Errorf("back ZIndex = %d, expected floor at 0", element.ZIndex)
	}
}

func TestSetZOrder_ForwardBackwardSwapNeighbors(t *testing.T) {
	svc, board := newBoardFixture(t)

	a := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	b := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})

	element, err := svc.SetZOrder(board.ID, a.ID, ZOrderForward)
	if err != nil {
		t.Fatalf("SetZOrder(forward) error: %v", err)
	}
	if element.ZIndex != 1 {
		t.Errorf("forward ZIndex = %d, expected 1", element.ZIndex)
	}
	if got := reloadElement(t, svc.db, b.ID); got.ZIndex != 0 {
		t.Errorf("neighbor ZIndex = %d, expected 0 after swap", got.ZIndex)
	}

	// Already on top: no-op.
	element, err = svc.SetZOrder(board.ID, a.ID, ZOrderForward)
	if err != nil {
		t.Fatalf("SetZOrder(forward) error: %v", err)
	}
	if element.ZIndex != 1 {
		t.Errorf("forward at top ZIndex = %d, expected 1", element.ZIndex)
	}

	element, err = svc.SetZOrder(board.ID, a.ID, ZOrderBackward)
	if err != nil {
		t.Fatalf("SetZOrder(backward) error: %v", err)
	}
	if element.ZIndex != 0 {
		t.Errorf("backward ZIndex = %d, expected 0", element.ZIndex)
	}

	if _, err := svc.SetZOrder(board.ID, a.ID, "sideways"); err == nil {
		t.Error("expected an error for an unknown z-order operation")
	}
}

func TestReparent_ShiftsSiblingsAndStacksY(t *testing.T) {
	svc, board := newBoardFixture(t)

	column := mustCreateElement(t, svc, board.ID, &CreateElementRequest{
		Type: models.ElementColumn, Y: 100, Width: 200, Height: 400,
	})
	a := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote, Height: 50})
	b := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote, Height: 30})
	c := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote, Height: 30})

	if _, err := svc.Reparent(board.ID, a.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: 0}); err != nil {
		t.Fatalf("Reparent(a) error: %v", err)
	}
	got, err := svc.Reparent(board.ID, b.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: 1})
	if err != nil {
		t.Fatalf("Reparent(b) error: %v", err)
	}
	if want := column.Y + columnHeaderHeight + 50 + columnChildGap; got.Y != want {
		t.Errorf("b.Y = %v, expected %v (stacked below a)", got.Y, want)
	}

	// Dropping c at the head shifts a and b to 1 and 2.
	got, err = svc.Reparent(board.ID, c.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: 0})
	if err != nil {
		t.Fatalf("Reparent(c) error: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != column.ID {
		t.Fatal("c.ParentID should point at the column")
	}
	if got.ChildIndex() != 0 {
		t.Errorf("c childIndex = %d, expected 0", got.ChildIndex())
	}
	if want := column.Y + columnHeaderHeight; got.Y != want {
		t.Errorf("c.Y = %v, expected %v (first slot)", got.Y, want)
	}
	if got := reloadElement(t, svc.db, a.ID); got.ChildIndex() != 1 {
		t.Errorf("a childIndex = %d, expected 1 after shift", got.ChildIndex())
	}
	if got := reloadElement(t, svc.db, b.ID); got.ChildIndex() != 2 {
		t.Errorf("b childIndex = %d, expected 2 after shift", got.ChildIndex())
	}
}

func TestDetach_ClosesSiblingGap(t *testing.T) {
	svc, board := newBoardFixture(t)

	column := mustCreateElement(t, svc, board.ID, &CreateElementRequest{
		Type: models.ElementColumn, Y: 0, Width: 200, Height: 400,
	})
	a := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	b := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	c := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	for i, el := range []*models.BoardElement{a, b, c} {
		if _, err := svc.Reparent(board.ID, el.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: i}); err != nil {
			t.Fatalf("Reparent error: %v", err)
		}
	}

	got, err := svc.Detach(board.ID, b.ID)
	if err != nil {
		t.Fatalf("Detach error: %v", err)
	}
	if got.ParentID != nil {
		t.Error("detached element should have no parent")
	}
	if _, ok := got.Metadata["childIndex"]; ok {
		t.Error("detached element should drop its childIndex")
	}
	if got := reloadElement(t, svc.db, a.ID); got.ChildIndex() != 0 {
		t.Errorf("a childIndex = %d, expected 0", got.ChildIndex())
	}
	if got := reloadElement(t, svc.db, c.ID); got.ChildIndex() != 1 {
		t.Errorf("c childIndex = %d, expected 1 (gap closed)", got.ChildIndex())
	}
}

func TestReparent_SiblingWithoutIndexIsReindexed(t *testing.T) {
	svc, board := newBoardFixture(t)

	column := mustCreateElement(t, svc, board.ID, &CreateElementRequest{
		Type: models.ElementColumn, Y: 0, Width: 200, Height: 400,
	})
	a := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	b := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	c := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	if _, err := svc.Reparent(board.ID, a.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: 0}); err != nil {
		t.Fatalf("Reparent(a) error: %v", err)
	}
	if _, err := svc.Reparent(board.ID, b.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: 1}); err != nil {
		t.Fatalf("Reparent(b) error: %v", err)
	}

	// A metadata merge can drop b's stored index while it stays parented.
	if _, err := svc.UpdateElement(board.ID, b.ID, &UpdateElementRequest{
		Metadata: models.JSONMap{"childIndex": nil},
	}); err != nil {
		t.Fatalf("UpdateElement error: %v", err)
	}

	if _, err := svc.Reparent(board.ID, c.ID, &ReparentRequest{ColumnID: column.ID, ChildIndex: 0}); err != nil {
		t.Fatalf("Reparent(c) error: %v", err)
	}
	if got := reloadElement(t, svc.db, a.ID); got.ChildIndex() != 1 {
		t.Errorf("a childIndex = %d, expected 1", got.ChildIndex())
	}
	// The index-less sibling sorts last and gets a real trailing index,
	// not sentinel arithmetic.
	if got := reloadElement(t, svc.db, b.ID); got.ChildIndex() != 2 {
		t.Errorf("b childIndex = %d, expected 2", got.ChildIndex())
	}
}

func TestReparent_RejectsNonColumnTargets(t *testing.T) {
	svc, board := newBoardFixture(t)

	note := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	other := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementNote})
	column := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementColumn})
	nested := mustCreateElement(t, svc, board.ID, &CreateElementRequest{Type: models.ElementColumn})

	if _, err := svc.Reparent(board.ID, note.ID, &ReparentRequest{ColumnID: other.ID}); err == nil {
		t.Error("expected an error when the target is not a column")
	}
	if _, err := svc.Reparent(board.ID, note.ID, &ReparentRequest{ColumnID: note.ID}); err == nil {
		t.Error("expected an error when the element targets itself")
	}
	if _, err := svc.Reparent(board.ID, nested.ID, &ReparentRequest{ColumnID: column.ID}); err == nil {
		t.Error("expected an error when nesting a column")
	}
}
