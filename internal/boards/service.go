package boards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Prabisha01/de/internal/access"
	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/Prabisha01/de/internal/ids"
	"github.com/Prabisha01/de/internal/media"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingMedia      = errors.New("media ingress is required")
	noOpLogger           = zap.NewNop()

	errBoardNotFound   = fmt.Errorf("%w: board not found", apperrors.ErrNotFound)
	errElementNotFound = fmt.Errorf("%w: element not found", apperrors.ErrNotFound)
)

// ServiceError carries an operation.reason code for unexpected store or provider failures.
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
	opServiceNew     = "boards.service.new"
	opCreate         = "boards.create"
	opList           = "boards.list"
	opGet            = "boards.get"
	opMutate         = "boards.mutate"
	opDelete         = "boards.delete"
	opSearch         = "boards.search"
	opCount          = "boards.count"
	opUploadImage    = "boards.upload_image"
	opProcessPDF     = "boards.process_pdf"
	opRemoveMedia    = "boards.remove_media"
	opPopulateOwners = "boards.populate_owners"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// OwnerLedger keeps the owner's list of board ids in step with board creation and deletion.
type OwnerLedger interface {
	AttachBoard(tx *gorm.DB, userID string, boardID string) error
	DetachBoard(tx *gorm.DB, userID string, boardID string) error
}

// OwnerDirectory resolves owner ids to their public view.
type OwnerDirectory interface {
	Owners(ctx context.Context, userIDs []string) (map[string]Owner, error)
}

// DependentStore removes records that reference a board, inside the deleting transaction.
type DependentStore interface {
	DeleteForBoard(tx *gorm.DB, boardID string) error
}

// MediaIngress stores uploads for board elements.
type MediaIngress interface {
	IngestImage(ctx context.Context, upload media.Upload) (media.StoredObject, error)
	RasterizePDF(ctx context.Context, upload media.Upload) (media.StoredObject, error)
	Remove(ctx context.Context, ref string) error
}

// ChangeNotifier receives committed board mutations.
type ChangeNotifier interface {
	NotifyBoardChange(ownerID string, change Change)
}

// ServiceConfig wires the board service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider ids.Provider
	Media      MediaIngress
	Ledger     OwnerLedger
	Directory  OwnerDirectory
	Dependents []DependentStore
	Notifier   ChangeNotifier
	Logger     *zap.Logger
}

// Service implements board and element operations.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider ids.Provider
	media      MediaIngress
	ledger     OwnerLedger
	directory  OwnerDirectory
	dependents []DependentStore
	notifier   ChangeNotifier
	logger     *zap.Logger
}

// NewService validates cfg and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	if cfg.Media == nil {
		return nil, newServiceError(opServiceNew, "missing_media", errMissingMedia)
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
		media:      cfg.Media,
		ledger:     cfg.Ledger,
		directory:  cfg.Directory,
		dependents: append([]DependentStore(nil), cfg.Dependents...),
		notifier:   cfg.Notifier,
		logger:     logger,
	}, nil
}

// AddDependent registers a store whose records are deleted with each board. Call it
// during wiring, before the service handles requests.
func (s *Service) AddDependent(store DependentStore) {
	s.dependents = append(s.dependents, store)
}

// Create persists a board owned by the actor and records it on the owner's board list.
func (s *Service) Create(ctx context.Context, actor access.Actor, boardName string) (Board, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Board{}, apperrors.ErrUnauthenticated
	}
	boardName = strings.TrimSpace(boardName)
	if boardName == "" {
		return Board{}, fmt.Errorf("%w: board name is required", apperrors.ErrValidation)
	}
	boardID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return Board{}, newServiceError(opCreate, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	board := Board{
		ID:        boardID,
		BoardName: boardName,
		Elements:  Elements{},
		OwnerID:   actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&board).Error; err != nil {
			return err
		}
		if s.ledger != nil {
			return s.ledger.AttachBoard(tx, actor.UserID, board.ID)
		}
		return nil
	})
	if err != nil {
		s.logError(opCreate, "persist_failed", err, zap.String("user_id", actor.UserID))
		return Board{}, newServiceError(opCreate, "persist_failed", err)
	}

	s.notify(board.OwnerID, board.ID, ChangeCreated)
	return s.withOwner(ctx, board), nil
}

// List returns the boards owned by the actor, newest first.
func (s *Service) List(ctx context.Context, actor access.Actor) ([]Board, error) {
	var boards []Board
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", actor.UserID).
		Order("created_at DESC").
		Find(&boards).Error
	if err != nil {
		s.logError(opList, "query_failed", err, zap.String("user_id", actor.UserID))
		return nil, newServiceError(opList, "query_failed", err)
	}
	return s.withOwners(ctx, boards), nil
}

// Get returns a board with its owner populated.
func (s *Service) Get(ctx context.Context, boardID string) (Board, error) {
	board, err := s.load(ctx, s.db.WithContext(ctx), opGet, boardID)
	if err != nil {
		return Board{}, err
	}
	return s.withOwner(ctx, board), nil
}

// OwnerOf returns the owner id of a board.
func (s *Service) OwnerOf(ctx context.Context, boardID string) (string, error) {
	board, err := s.load(ctx, s.db.WithContext(ctx), opGet, boardID)
	if err != nil {
		return "", err
	}
	return board.OwnerID, nil
}

// Update replaces the board content when provided and the element sequence when provided.
func (s *Service) Update(ctx context.Context, actor access.Actor, boardID string, input UpdateInput) (Board, error) {
	return s.mutate(ctx, actor, boardID, ChangeUpdated, func(board *Board) error {
		if input.Content != nil {
			board.Content = *input.Content
		}
		if input.Elements != nil {
			replaced := make(Elements, 0, len(*input.Elements))
			for _, candidate := range *input.Elements {
				element, err := s.buildElement(candidate, replaced, true)
				if err != nil {
					return err
				}
				replaced = append(replaced, element)
			}
			board.Elements = replaced
		}
		return nil
	})
}

// ToggleFavorite flips the favorite flag.
func (s *Service) ToggleFavorite(ctx context.Context, actor access.Actor, boardID string) (Board, error) {
	return s.mutate(ctx, actor, boardID, ChangeUpdated, func(board *Board) error {
		board.IsFavorite = !board.IsFavorite
		return nil
	})
}

// Delete removes a board together with its dependents, detaches it from the owner and
// then removes media referenced by its elements.
func (s *Service) Delete(ctx context.Context, actor access.Actor, boardID string) (Board, error) {
	var deleted Board
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := s.lockAndAuthorize(ctx, tx, actor, opDelete, boardID)
		if err != nil {
			return err
		}
		if err := s.deleteInTx(tx, board); err != nil {
			return err
		}
		deleted = board
		return nil
	})
	if err != nil {
		return Board{}, err
	}
	s.removeMedia(ctx, deleted)
	s.notify(deleted.OwnerID, deleted.ID, ChangeDeleted)
	return s.withOwner(ctx, deleted), nil
}

// DeleteOwnedBoards removes every board owned by userID inside tx with the same cascade
// as Delete. The returned func removes their media and must run after tx commits.
func (s *Service) DeleteOwnedBoards(ctx context.Context, tx *gorm.DB, userID string) (func(context.Context), error) {
	var owned []Board
	if err := tx.WithContext(ctx).Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		s.logError(opDelete, "owned_query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opDelete, "owned_query_failed", err)
	}
	for _, board := range owned {
		if err := s.deleteInTx(tx, board); err != nil {
			return nil, err
		}
	}
	return func(ctx context.Context) {
		for _, board := range owned {
			s.removeMedia(ctx, board)
			s.notify(board.OwnerID, board.ID, ChangeDeleted)
		}
	}, nil
}

// Search matches board names case-insensitively. Non-admin callers only see their own boards.
func (s *Service) Search(ctx context.Context, actor access.Actor, pattern string) ([]Board, error) {
	query := s.db.WithContext(ctx).Model(&Board{})
	if !actor.IsAdmin() {
		query = query.Where("owner_id = ?", actor.UserID)
	}
	if trimmed := strings.TrimSpace(pattern); trimmed != "" {
		query = query.Where("LOWER(board_name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(trimmed))+"%")
	}
	var boards []Board
	if err := query.Order("created_at DESC").Find(&boards).Error; err != nil {
		s.logError(opSearch, "query_failed", err, zap.String("pattern", pattern))
		return nil, newServiceError(opSearch, "query_failed", err)
	}
	return s.withOwners(ctx, boards), nil
}

// CountByOwner returns the number of boards owned by userID.
func (s *Service) CountByOwner(ctx context.Context, userID string) (int64, error) {
	userID, err := ids.Validate("userId", userID)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&Board{}).Where("owner_id = ?", userID).Count(&count).Error; err != nil {
		s.logError(opCount, "query_failed", err, zap.String("user_id", userID))
		return 0, newServiceError(opCount, "query_failed", err)
	}
	return count, nil
}

// CreateElement appends a new element on top of the board. Type and content are required.
func (s *Service) CreateElement(ctx context.Context, actor access.Actor, boardID string, input ElementInput) (Element, error) {
	if _, err := ids.Validate("boardId", boardID); err != nil {
		return Element{}, err
	}
	if strings.TrimSpace(input.Type) == "" || strings.TrimSpace(input.Content) == "" {
		return Element{}, fmt.Errorf("%w: element type and content are required", apperrors.ErrValidation)
	}
	input.ID = ""
	input.Rank = nil
	var created Element
	_, err := s.mutate(ctx, actor, boardID, ChangeElementsEdited, func(board *Board) error {
		element, err := s.buildElement(input, board.Elements, true)
		if err != nil {
			return err
		}
		board.Elements = append(board.Elements, element)
		created = element
		return nil
	})
	if err != nil {
		return Element{}, err
	}
	return created, nil
}

// UpsertElement replaces the element with a matching id in place, or appends it when no element matches.
func (s *Service) UpsertElement(ctx context.Context, actor access.Actor, boardID string, input ElementInput) (Board, error) {
	return s.mutate(ctx, actor, boardID, ChangeElementsEdited, func(board *Board) error {
		index := -1
		if strings.TrimSpace(input.ID) != "" {
			index = board.Elements.indexOf(strings.TrimSpace(input.ID))
		}
		if index < 0 {
			element, err := s.buildElement(input, board.Elements, true)
			if err != nil {
				return err
			}
			board.Elements = append(board.Elements, element)
			return nil
		}
		if input.Rank == nil {
			rank := board.Elements[index].Rank
			input.Rank = &rank
		}
		element, err := s.buildElement(input, board.Elements, false)
		if err != nil {
			return err
		}
		board.Elements[index] = element
		return nil
	})
}

// DeleteElement removes the element with elementID. A missing element leaves the board unchanged.
func (s *Service) DeleteElement(ctx context.Context, actor access.Actor, boardID string, elementID string) (Board, error) {
	elementID = strings.TrimSpace(elementID)
	if elementID == "" {
		return Board{}, fmt.Errorf("%w: element id is required", apperrors.ErrValidation)
	}
	return s.mutate(ctx, actor, boardID, ChangeElementsEdited, func(board *Board) error {
		index := board.Elements.indexOf(elementID)
		if index < 0 {
			return nil
		}
		board.Elements = append(board.Elements[:index:index], board.Elements[index+1:]...)
		return nil
	})
}

// BringToFront gives an element the highest rank on its board.
func (s *Service) BringToFront(ctx context.Context, actor access.Actor, boardID string, elementID string) (Element, error) {
	elementID = strings.TrimSpace(elementID)
	if elementID == "" {
		return Element{}, fmt.Errorf("%w: element id is required", apperrors.ErrValidation)
	}
	var raised Element
	_, err := s.mutate(ctx, actor, boardID, ChangeElementsEdited, func(board *Board) error {
		index := board.Elements.indexOf(elementID)
		if index < 0 {
			return errElementNotFound
		}
		if board.Elements[index].Rank < board.Elements.maxRank() || countRank(board.Elements, board.Elements[index].Rank) > 1 {
			board.Elements[index].Rank = board.Elements.maxRank() + 1
		}
		raised = board.Elements[index]
		return nil
	})
	if err != nil {
		return Element{}, err
	}
	return raised, nil
}

// Images lists the references of the board's image elements.
func (s *Service) Images(ctx context.Context, boardID string) ([]string, error) {
	board, err := s.load(ctx, s.db.WithContext(ctx), opGet, boardID)
	if err != nil {
		return nil, err
	}
	images := make([]string, 0)
	for _, element := range board.Elements {
		if element.Type != ElementTypeImage {
			continue
		}
		if ref := elementMediaRef(element); ref != "" {
			images = append(images, ref)
		}
	}
	return images, nil
}

// UploadImage stores an image through media ingress and appends an image element referencing it.
func (s *Service) UploadImage(ctx context.Context, actor access.Actor, boardID string, upload media.Upload) (Element, error) {
	return s.attachUpload(ctx, actor, boardID, upload, opUploadImage, s.media.IngestImage, Size{Width: defaultElementWidth, Height: defaultElementHeight})
}

// ProcessPDF rasterizes the first page of a PDF and appends it as an image element.
func (s *Service) ProcessPDF(ctx context.Context, actor access.Actor, boardID string, upload media.Upload) (Element, error) {
	return s.attachUpload(ctx, actor, boardID, upload, opProcessPDF, s.media.RasterizePDF, Size{Width: pdfElementWidth, Height: pdfElementHeight})
}

func (s *Service) attachUpload(
	ctx context.Context,
	actor access.Actor,
	boardID string,
	upload media.Upload,
	operation string,
	store func(context.Context, media.Upload) (media.StoredObject, error),
	size Size,
) (Element, error) {
	if upload.Body == nil {
		return Element{}, media.ErrNoFile
	}
	board, err := s.load(ctx, s.db.WithContext(ctx), operation, boardID)
	if err != nil {
		return Element{}, err
	}
	if err := access.AuthorizeMutation(actor, board.OwnerID); err != nil {
		return Element{}, err
	}

	stored, err := store(ctx, upload)
	if err != nil {
		if isClientError(err) {
			return Element{}, err
		}
		s.logError(operation, "media_failed", err, zap.String("board_id", board.ID))
		return Element{}, newServiceError(operation, "media_failed", err)
	}

	var created Element
	_, err = s.mutate(ctx, actor, board.ID, ChangeElementsEdited, func(current *Board) error {
		element, err := s.buildElement(ElementInput{
			Type:    ElementTypeImage,
			Content: stored.Ref,
			Src:     stored.Ref,
			Size:    &size,
		}, current.Elements, true)
		if err != nil {
			return err
		}
		current.Elements = append(current.Elements, element)
		current.Uploads = append(current.Uploads, stored.Ref)
		created = element
		return nil
	})
	if err != nil {
		if removeErr := s.media.Remove(ctx, stored.Ref); removeErr != nil {
			s.logError(operation, "orphan_cleanup_failed", removeErr, zap.String("ref", stored.Ref))
		}
		return Element{}, err
	}
	return created, nil
}

func (s *Service) mutate(ctx context.Context, actor access.Actor, boardID string, action string, apply func(*Board) error) (Board, error) {
	var updated Board
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := s.lockAndAuthorize(ctx, tx, actor, opMutate, boardID)
		if err != nil {
			return err
		}
		if err := apply(&board); err != nil {
			return err
		}
		if board.Elements == nil {
			board.Elements = Elements{}
		}
		board.UpdatedAt = s.clock().UTC()
		if err := tx.Save(&board).Error; err != nil {
			s.logError(opMutate, "persist_failed", err, zap.String("board_id", board.ID))
			return newServiceError(opMutate, "persist_failed", err)
		}
		updated = board
		return nil
	})
	if err != nil {
		return Board{}, err
	}
	s.notify(updated.OwnerID, updated.ID, action)
	return s.withOwner(ctx, updated), nil
}

func (s *Service) lockAndAuthorize(ctx context.Context, tx *gorm.DB, actor access.Actor, operation string, boardID string) (Board, error) {
	board, err := s.load(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), operation, boardID)
	if err != nil {
		return Board{}, err
	}
	if err := access.AuthorizeMutation(actor, board.OwnerID); err != nil {
		return Board{}, err
	}
	return board, nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, operation string, boardID string) (Board, error) {
	boardID, err := ids.Validate("boardId", boardID)
	if err != nil {
		return Board{}, err
	}
	var board Board
	err = db.Where("id = ?", boardID).Take(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Board{}, errBoardNotFound
	}
	if err != nil {
		s.logError(operation, "board_select_failed", err, zap.String("board_id", boardID))
		return Board{}, newServiceError(operation, "board_select_failed", err)
	}
	if board.Elements == nil {
		board.Elements = Elements{}
	}
	return board, nil
}

func (s *Service) deleteInTx(tx *gorm.DB, board Board) error {
	for _, dependent := range s.dependents {
		if err := dependent.DeleteForBoard(tx, board.ID); err != nil {
			s.logError(opDelete, "dependents_failed", err, zap.String("board_id", board.ID))
			return newServiceError(opDelete, "dependents_failed", err)
		}
	}
	if err := tx.Where("id = ?", board.ID).Delete(&Board{}).Error; err != nil {
		s.logError(opDelete, "persist_failed", err, zap.String("board_id", board.ID))
		return newServiceError(opDelete, "persist_failed", err)
	}
	if s.ledger != nil {
		if err := s.ledger.DetachBoard(tx, board.OwnerID, board.ID); err != nil {
			s.logError(opDelete, "detach_failed", err, zap.String("board_id", board.ID))
			return newServiceError(opDelete, "detach_failed", err)
		}
	}
	return nil
}

// removeMedia removes the objects the board ingested, skipping any still referenced
// by an element of another board.
func (s *Service) removeMedia(ctx context.Context, board Board) {
	for _, ref := range board.Uploads {
		if ref == "" {
			continue
		}
		shared, err := s.referencedElsewhere(ctx, board.ID, ref)
		if err != nil {
			s.logger.Warn("board media reference check failed",
				zap.String("operation", opRemoveMedia),
				zap.String("board_id", board.ID),
				zap.String("ref", ref),
				zap.Error(err))
			continue
		}
		if shared {
			continue
		}
		if err := s.media.Remove(ctx, ref); err != nil {
			s.logger.Warn("board media removal failed",
				zap.String("operation", opRemoveMedia),
				zap.String("board_id", board.ID),
				zap.String("ref", ref),
				zap.Error(err))
		}
	}
}

func (s *Service) referencedElsewhere(ctx context.Context, boardID string, ref string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Board{}).
		Where("id <> ? AND elements LIKE ? ESCAPE '\\'", boardID, "%"+escapeLike(ref)+"%").
		Count(&count).Error
	return count > 0, err
}

// buildElement applies defaults to input. Elements without an id, or with one already
// present in existing when fresh is set, get a new id. Unless input carries a rank the
// element is ranked above every element in existing.
func (s *Service) buildElement(input ElementInput, existing Elements, fresh bool) (Element, error) {
	elementType := strings.TrimSpace(input.Type)
	if elementType == "" {
		return Element{}, fmt.Errorf("%w: element type is required", apperrors.ErrValidation)
	}
	element := Element{
		ID:       strings.TrimSpace(input.ID),
		Type:     elementType,
		Content:  input.Content,
		Position: Position{},
		Size:     Size{Width: defaultElementWidth, Height: defaultElementHeight},
		Style:    input.Style,
		Src:      input.Src,
		Shape:    input.Shape,
		Color:    input.Color,
	}
	if input.Position != nil {
		element.Position = *input.Position
	}
	if input.Size != nil {
		element.Size = *input.Size
	}
	if element.ID == "" || fresh && existing.indexOf(element.ID) >= 0 {
		elementID, err := s.idProvider.NewID()
		if err != nil {
			return Element{}, newServiceError(opMutate, "id_generation_failed", err)
		}
		element.ID = elementID
	}
	if input.Rank != nil {
		element.Rank = *input.Rank
	} else {
		element.Rank = existing.maxRank() + 1
	}
	return element, nil
}

func (s *Service) withOwner(ctx context.Context, board Board) Board {
	populated := s.withOwners(ctx, []Board{board})
	return populated[0]
}

func (s *Service) withOwners(ctx context.Context, boards []Board) []Board {
	if boards == nil {
		boards = []Board{}
	}
	for index := range boards {
		if boards[index].Elements == nil {
			boards[index].Elements = Elements{}
		}
		boards[index].Owner = &Owner{ID: boards[index].OwnerID}
	}
	if s.directory == nil || len(boards) == 0 {
		return boards
	}
	ownerIDs := make([]string, 0, len(boards))
	seen := make(map[string]struct{}, len(boards))
	for _, board := range boards {
		if _, ok := seen[board.OwnerID]; ok {
			continue
		}
		seen[board.OwnerID] = struct{}{}
		ownerIDs = append(ownerIDs, board.OwnerID)
	}
	owners, err := s.directory.Owners(ctx, ownerIDs)
	if err != nil {
		s.logError(opPopulateOwners, "lookup_failed", err)
		return boards
	}
	for index := range boards {
		if owner, ok := owners[boards[index].OwnerID]; ok {
			ownerCopy := owner
			boards[index].Owner = &ownerCopy
		}
	}
	return boards
}

func (s *Service) notify(ownerID, boardID, action string) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyBoardChange(ownerID, Change{BoardID: boardID, Action: action})
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
	s.logger.Error("board service failure", allFields...)
}

func elementMediaRef(element Element) string {
	if ref := strings.TrimSpace(element.Src); ref != "" {
		return ref
	}
	return strings.TrimSpace(element.Content)
}

func countRank(elements Elements, rank int64) int {
	count := 0
	for _, element := range elements {
		if element.Rank == rank {
			count++
		}
	}
	return count
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func isClientError(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrBadRequest)
}
