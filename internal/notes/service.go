package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Prabisha01/de/internal/access"
	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/Prabisha01/de/internal/ids"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase    = errors.New("database handle is required")
	errMissingIDProvider  = errors.New("id provider is required")
	errMissingBoardAccess = errors.New("board access is required")
	errNoteNotFound       = fmt.Errorf("%w: note not found", apperrors.ErrNotFound)
	noOpLogger            = zap.NewNop()
)

// ServiceError carries an operation.reason code for unexpected store failures.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew     = "notes.service.new"
	opCreate         = "notes.create"
	opListByBoard    = "notes.list_by_board"
	opUpdate         = "notes.update"
	opDelete         = "notes.delete"
	opDeleteForBoard = "notes.delete_for_board"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// BoardAccess resolves the owner of a board.
type BoardAccess interface {
	OwnerOf(ctx context.Context, boardID string) (string, error)
}

// ServiceConfig wires the note service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider ids.Provider
	Boards     BoardAccess
	Logger     *zap.Logger
}

// Service implements sticky note CRUD. Mutations require ownership of the note's board.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider ids.Provider
	boards     BoardAccess
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	if cfg.Boards == nil {
		return nil, newServiceError(opServiceNew, "missing_board_access", errMissingBoardAccess)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		boards:     cfg.Boards,
		logger:     logger,
	}, nil
}

func (s *Service) Create(ctx context.Context, actor access.Actor, input CreateInput) (Note, error) {
	if strings.TrimSpace(input.BoardID) == "" || strings.TrimSpace(input.Content) == "" {
		return Note{}, fmt.Errorf("%w: board id and content are required", apperrors.ErrValidation)
	}
	boardID, err := ids.Validate("boardId", input.BoardID)
	if err != nil {
		return Note{}, err
	}
	noteType, err := NewNoteType(input.Type)
	if err != nil {
		return Note{}, err
	}
	if err := s.authorizeBoard(ctx, actor, boardID); err != nil {
		return Note{}, err
	}

	noteID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return Note{}, newServiceError(opCreate, "id_generation_failed", err)
	}
	now := s.clock().UTC()
	note := Note{
		ID:        noteID,
		BoardID:   boardID,
		Content:   input.Content,
		Type:      noteType,
		Position:  Position{X: defaultPositionX, Y: defaultPositionY},
		Size:      Size{Width: defaultWidth, Height: defaultHeight},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Position != nil {
		note.Position = *input.Position
	}
	if input.Size != nil {
		note.Size = *input.Size
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		s.logError(opCreate, "persist_failed", err, zap.String("board_id", boardID))
		return Note{}, newServiceError(opCreate, "persist_failed", err)
	}
	return note, nil
}

// ListByBoard returns the notes of a board in creation order.
func (s *Service) ListByBoard(ctx context.Context, boardID string) ([]Note, error) {
	boardID, err := ids.Validate("boardId", boardID)
	if err != nil {
		return nil, err
	}
	notes := make([]Note, 0)
	err = s.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&notes).Error
	if err != nil {
		s.logError(opListByBoard, "query_failed", err, zap.String("board_id", boardID))
		return nil, newServiceError(opListByBoard, "query_failed", err)
	}
	return notes, nil
}

func (s *Service) Update(ctx context.Context, actor access.Actor, noteID string, input UpdateInput) (Note, error) {
	note, err := s.loadAuthorized(ctx, actor, opUpdate, noteID)
	if err != nil {
		return Note{}, err
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return Note{}, fmt.Errorf("%w: content must not be empty", apperrors.ErrValidation)
		}
		note.Content = *input.Content
	}
	if input.Type != nil {
		noteType, err := NewNoteType(*input.Type)
		if err != nil {
			return Note{}, err
		}
		note.Type = noteType
	}
	if input.Position != nil {
		note.Position = *input.Position
	}
	if input.Size != nil {
		note.Size = *input.Size
	}
	note.UpdatedAt = s.clock().UTC()
	if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
		s.logError(opUpdate, "persist_failed", err, zap.String("note_id", note.ID))
		return Note{}, newServiceError(opUpdate, "persist_failed", err)
	}
	return note, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, noteID string) (Note, error) {
	note, err := s.loadAuthorized(ctx, actor, opDelete, noteID)
	if err != nil {
		return Note{}, err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", note.ID).Delete(&Note{}).Error; err != nil {
		s.logError(opDelete, "persist_failed", err, zap.String("note_id", note.ID))
		return Note{}, newServiceError(opDelete, "persist_failed", err)
	}
	return note, nil
}

// DeleteForBoard removes every note of boardID within tx.
func (s *Service) DeleteForBoard(tx *gorm.DB, boardID string) error {
	if err := tx.Where("board_id = ?", boardID).Delete(&Note{}).Error; err != nil {
		s.logError(opDeleteForBoard, "persist_failed", err, zap.String("board_id", boardID))
		return newServiceError(opDeleteForBoard, "persist_failed", err)
	}
	return nil
}

func (s *Service) loadAuthorized(ctx context.Context, actor access.Actor, operation string, noteID string) (Note, error) {
	noteID, err := ids.Validate("noteId", noteID)
	if err != nil {
		return Note{}, err
	}
	var note Note
	err = s.db.WithContext(ctx).Where("id = ?", noteID).Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Note{}, errNoteNotFound
	}
	if err != nil {
		s.logError(operation, "note_select_failed", err, zap.String("note_id", noteID))
		return Note{}, newServiceError(operation, "note_select_failed", err)
	}
	if err := s.authorizeBoard(ctx, actor, note.BoardID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return Note{}, err
		}
		if authErr := access.AuthorizeMutation(actor, ""); authErr != nil {
			return Note{}, authErr
		}
	}
	return note, nil
}

func (s *Service) authorizeBoard(ctx context.Context, actor access.Actor, boardID string) error {
	ownerID, err := s.boards.OwnerOf(ctx, boardID)
	if err != nil {
		return err
	}
	return access.AuthorizeMutation(actor, ownerID)
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	if s.logger == nil {
		return
	}
	allFields := append([]zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}, fields...)
	s.logger.Error("note service failure", allFields...)
}
