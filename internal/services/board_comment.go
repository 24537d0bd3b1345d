package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
	"gorm.io/gorm"
)

// mentionPattern captures "@" followed by up to two space-separated
// word tokens. The captured substring is compared against the roster by
// case-insensitive exact full-name equality.
var mentionPattern = regexp.MustCompile(`@(\w+(?: \w+)?)`)

type BoardCommentService struct {
	db *gorm.DB
}

func NewBoardCommentService(db *gorm.DB) *BoardCommentService {
	return &BoardCommentService{db: db}
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// List returns a board's comments oldest first. Replies carry their
// parent id; threading is one level deep.
func (s *BoardCommentService) List(boardID uint) ([]models.BoardComment, error) {
	var comments []models.BoardComment
	err := s.db.Preload("Author").
		Where("board_id = ?", boardID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Create stores a comment and extracts mentions from its content.
// Mention and notification failures are logged but never fail the
// comment write.
func (s *BoardCommentService) Create(boardID, authorID uint, req *CreateCommentRequest) (*models.BoardComment, error) {
	var board models.Board
	if err := s.db.First(&board, boardID).Error; err != nil {
		return nil, errors.New("board not found")
	}

	parentID := req.ParentID
	if parentID != nil {
		var parent models.BoardComment
		if err := s.db.Where("id = ? AND board_id = ?", *parentID, boardID).
			First(&parent).Error; err != nil {
			return nil, errors.New("parent comment not found")
		}
		// Replies to replies attach to the top-level comment.
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := models.BoardComment{
		BoardID:  boardID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  req.Content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	s.processMentions(&board, &comment)

	s.db.Preload("Author").First(&comment, comment.ID)
	return &comment, nil
}

// Delete removes a comment and its direct replies. Authors can delete
// their own comments; the board owner can delete any.
func (s *BoardCommentService) Delete(boardID, commentID, userID uint) error {
	var board models.Board
	if err := s.db.First(&board, boardID).Error; err != nil {
		return errors.New("board not found")
	}
	var comment models.BoardComment
	if err := s.db.Where("id = ? AND board_id = ?", commentID, boardID).
		First(&comment).Error; err != nil {
		return errors.New("comment not found")
	}
	if comment.AuthorID != userID && board.OwnerID != userID {
		return errors.New("not allowed to delete this comment")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.BoardComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
}

// processMentions parses the comment for @Full Name tokens and creates
// one Mention plus one Notification per distinct matched user.
// Self-mentions create a Mention but no Notification.
func (s *BoardCommentService) processMentions(board *models.Board, comment *models.BoardComment) {
	matched := s.extractMentionedUsers(comment.Content)
	if len(matched) == 0 {
		return
	}

	var author models.User
	authorName := "Someone"
	if err := s.db.First(&author, comment.AuthorID).Error; err == nil {
		authorName = author.FullName()
	}

	for _, user := range matched {
		mention := models.Mention{
			CommentID:       comment.ID,
			BoardID:         board.ID,
			MentionedUserID: user.ID,
			MentionedByID:   comment.AuthorID,
		}
		if err := s.db.Create(&mention).Error; err != nil {
			logger.Warnf("[Danote] Failed to create mention for user %d: %v", user.ID, err)
			continue
		}

		if user.ID == comment.AuthorID {
			continue
		}

		notification := models.Notification{
			RecipientID: user.ID,
			Type:        models.NotificationMention,
			Title:       fmt.Sprintf("%s mentioned you on %s", authorName, board.Title),
			Body:        comment.Content,
			RefType:     "comment",
			RefID:       &comment.ID,
		}
		if err := s.db.Create(&notification).Error; err != nil {
			logger.Warnf("[Danote] Failed to create mention notification for user %d: %v", user.ID, err)
			continue
		}
		PublishNotificationEvent(user.ID, notification.ID, notification)
	}
}

// extractMentionedUsers matches @ tokens against the active user
// roster.
func (s *BoardCommentService) extractMentionedUsers(content string) []models.User {
	if !strings.Contains(content, "@") {
		return nil
	}

	var roster []models.User
	if err := s.db.Where("is_active = ?", true).Order("id ASC").Find(&roster).Error; err != nil {
		logger.Warnf("[Danote] Failed to load user roster for mentions: %v", err)
		return nil
	}
	return matchMentions(content, roster)
}

// matchMentions compares each captured @ token against the roster by
// case-insensitive exact full-name equality. First roster match wins
// and each user appears at most once.
func matchMentions(content string, roster []models.User) []models.User {
	captures := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(captures) == 0 {
		return nil
	}

	var matched []models.User
	seen := make(map[uint]bool)
	for _, capture := range captures {
		candidate := capture[1]
		for _, user := range roster {
			if strings.EqualFold(candidate, user.FullName()) {
				if !seen[user.ID] {
					matched = append(matched, user)
					seen[user.ID] = true
				}
				break
			}
		}
	}
	return matched
}
