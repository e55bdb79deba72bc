package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Prabisha01/de/internal/access"
	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/Prabisha01/de/internal/auth"
	"github.com/Prabisha01/de/internal/boards"
	"github.com/Prabisha01/de/internal/ids"
	"github.com/Prabisha01/de/internal/media"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingHasher     = errors.New("password hasher is required")
	errMissingTokens     = errors.New("token issuer is required")
	noOpLogger           = zap.NewNop()

	errUserNotFound  = fmt.Errorf("%w: user not found", apperrors.ErrNotFound)
	errEmailTaken    = fmt.Errorf("%w: user already exists", apperrors.ErrConflict)
	errUsernameTaken = fmt.Errorf("%w: username is already taken", apperrors.ErrConflict)
	errBanned        = fmt.Errorf("%w: account is banned", apperrors.ErrForbidden)
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
	opServiceNew      = "users.service.new"
	opRegister        = "users.register"
	opLogin           = "users.login"
	opResolve         = "users.resolve"
	opList            = "users.list"
	opUpdate          = "users.update"
	opProfilePicture  = "users.profile_picture"
	opDelete          = "users.delete"
	opLedger          = "users.ledger"
	opOwners          = "users.owners"
	maxUsernameLength = 64
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs credentials for a user id.
type TokenIssuer interface {
	IssueToken(subject string) (auth.IssuedToken, error)
}

// BoardRemover deletes every board owned by a user inside the caller's transaction.
// The returned func releases board media after commit.
type BoardRemover interface {
	DeleteOwnedBoards(ctx context.Context, tx *gorm.DB, userID string) (func(context.Context), error)
}

// ImageIngress stores profile pictures.
type ImageIngress interface {
	IngestImage(ctx context.Context, upload media.Upload) (media.StoredObject, error)
	Remove(ctx context.Context, ref string) error
}

// ServiceConfig wires the credential service.
type ServiceConfig struct {
	Database               *gorm.DB
	Clock                  func() time.Time
	IDProvider             ids.Provider
	Hasher                 PasswordHasher
	Tokens                 TokenIssuer
	Boards                 BoardRemover
	Media                  ImageIngress
	AllowAdminRegistration bool
	Logger                 *zap.Logger
}

// Service is the credential service: registration, login and account management.
type Service struct {
	db                     *gorm.DB
	clock                  func() time.Time
	idProvider             ids.Provider
	hasher                 PasswordHasher
	tokens                 TokenIssuer
	boards                 BoardRemover
	media                  ImageIngress
	allowAdminRegistration bool
	logger                 *zap.Logger
}

// NewService validates cfg and constructs a Service. Boards and Media are optional.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	if cfg.Hasher == nil {
		return nil, newServiceError(opServiceNew, "missing_hasher", errMissingHasher)
	}
	if cfg.Tokens == nil {
		return nil, newServiceError(opServiceNew, "missing_tokens", errMissingTokens)
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
		db:                     cfg.Database,
		clock:                  clock,
		idProvider:             cfg.IDProvider,
		hasher:                 cfg.Hasher,
		tokens:                 cfg.Tokens,
		boards:                 cfg.Boards,
		media:                  cfg.Media,
		allowAdminRegistration: cfg.AllowAdminRegistration,
		logger:                 logger,
	}, nil
}

// SetBoardRemover attaches the board cascade after construction; the board service depends on this one.
func (s *Service) SetBoardRemover(remover BoardRemover) {
	s.boards = remover
}

// Register creates an account. Duplicate email or username fails with a conflict.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return User{}, fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}
	if err := validateUsername(username); err != nil {
		return User{}, err
	}
	if err := validateEmail(email); err != nil {
		return User{}, err
	}
	role, err := access.ParseRole(input.Role)
	if err != nil {
		return User{}, err
	}
	if role == access.RoleAdmin && !s.allowAdminRegistration {
		return User{}, fmt.Errorf("%w: admin accounts cannot be self-registered", apperrors.ErrForbidden)
	}

	db := s.db.WithContext(ctx)
	if taken, err := s.exists(db, "email = ?", email); err != nil {
		return User{}, s.storeFailure(opRegister, "lookup_failed", err)
	} else if taken {
		return User{}, errEmailTaken
	}
	if taken, err := s.exists(db, "username = ?", username); err != nil {
		return User{}, s.storeFailure(opRegister, "lookup_failed", err)
	} else if taken {
		return User{}, errUsernameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return User{}, err
		}
		return User{}, s.storeFailure(opRegister, "hash_failed", err)
	}
	userID, err := s.idProvider.NewID()
	if err != nil {
		return User{}, s.storeFailure(opRegister, "id_generation_failed", err)
	}
	now := s.clock().UTC()
	user := User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Plan:         PlanFree,
		Boards:       BoardIDs{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, errEmailTaken
		}
		return User{}, s.storeFailure(opRegister, "persist_failed", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// LoginResult is a successful login: the user and the credential issued for it.
type LoginResult struct {
	User  User
	Token auth.IssuedToken
}

// Login verifies username and password, records the login and issues a credential.
// Unknown usernames and wrong passwords fail identically with ErrInvalidCredential.
func (s *Service) Login(ctx context.Context, username string, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: please provide a username and password", apperrors.ErrValidation)
	}
	db := s.db.WithContext(ctx)
	var user User
	err := db.Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, apperrors.ErrInvalidCredential
	}
	if err != nil {
		return LoginResult{}, s.storeFailure(opLogin, "lookup_failed", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredential) {
			return LoginResult{}, apperrors.ErrInvalidCredential
		}
		return LoginResult{}, s.storeFailure(opLogin, "compare_failed", err)
	}
	if user.IsBanned {
		return LoginResult{}, errBanned
	}

	now := s.clock().UTC()
	err = db.Model(&User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"last_login_at": now,
		"login_count":   gorm.Expr("login_count + ?", 1),
	}).Error
	if err != nil {
		return LoginResult{}, s.storeFailure(opLogin, "record_login_failed", err)
	}
	user.LastLoginAt = &now
	user.LoginCount++

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return LoginResult{}, s.storeFailure(opLogin, "token_issue_failed", err)
	}
	return LoginResult{User: user, Token: token}, nil
}

// Resolve maps a credential subject to its user, failing with ErrUnknownSubject when absent.
func (s *Service) Resolve(ctx context.Context, subject string) (User, error) {
	user, err := s.Get(ctx, subject)
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
		return User{}, apperrors.ErrUnknownSubject
	}
	return user, err
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	userID, err := ids.Validate("userId", userID)
	if err != nil {
		return User{}, err
	}
	var user User
	err = s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, errUserNotFound
	}
	if err != nil {
		return User{}, s.storeFailure(opResolve, "lookup_failed", err)
	}
	if user.Boards == nil {
		user.Boards = BoardIDs{}
	}
	return user, nil
}

// Profile returns the actor's own account with its board count.
func (s *Service) Profile(ctx context.Context, actor access.Actor) (Profile, error) {
	user, err := s.Get(ctx, actor.UserID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: user, BoardsCount: len(user.Boards)}, nil
}

// Subscription returns the actor's plan; a premium plan past its expiry is reported inactive.
func (s *Service) Subscription(ctx context.Context, actor access.Actor) (Subscription, error) {
	user, err := s.Get(ctx, actor.UserID)
	if err != nil {
		return Subscription{}, err
	}
	plan := user.Plan
	if plan == "" {
		plan = PlanFree
	}
	active := plan == PlanFree || user.PlanExpiresAt == nil || user.PlanExpiresAt.After(s.clock())
	return Subscription{Plan: plan, ExpiresAt: user.PlanExpiresAt, Active: active}, nil
}

// List returns users matching filter. Admin only.
func (s *Service) List(ctx context.Context, actor access.Actor, filter ListFilter) ([]User, error) {
	if err := access.AuthorizeRoles(actor, access.RoleAdmin); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Model(&User{})
	if strings.TrimSpace(filter.Role) != "" {
		role, err := access.ParseRole(filter.Role)
		if err != nil {
			return nil, err
		}
		query = query.Where("role = ?", role)
	}
	if strings.TrimSpace(filter.Plan) != "" {
		plan, err := ParsePlan(filter.Plan)
		if err != nil {
			return nil, err
		}
		query = query.Where("plan = ?", plan)
	}
	if filter.IsBanned != nil {
		query = query.Where("is_banned = ?", *filter.IsBanned)
	}
	users := make([]User, 0)
	if err := query.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, s.storeFailure(opList, "query_failed", err)
	}
	return users, nil
}

// Update changes the target account. Owners may edit their identity fields; role,
// plan and ban changes require the admin role.
func (s *Service) Update(ctx context.Context, actor access.Actor, userID string, input UpdateInput) (User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if err := access.AuthorizeMutation(actor, user.ID); err != nil {
		return User{}, err
	}
	if input.touchesPrivilegedFields() && !actor.IsAdmin() {
		return User{}, fmt.Errorf("%w: only administrators may change role, plan or ban status", apperrors.ErrForbidden)
	}

	db := s.db.WithContext(ctx)
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if err := validateUsername(username); err != nil {
			return User{}, err
		}
		if username != user.Username {
			taken, err := s.exists(db, "username = ? AND id <> ?", username, user.ID)
			if err != nil {
				return User{}, s.storeFailure(opUpdate, "lookup_failed", err)
			}
			if taken {
				return User{}, errUsernameTaken
			}
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := validateEmail(email); err != nil {
			return User{}, err
		}
		if email != user.Email {
			taken, err := s.exists(db, "email = ? AND id <> ?", email, user.ID)
			if err != nil {
				return User{}, s.storeFailure(opUpdate, "lookup_failed", err)
			}
			if taken {
				return User{}, errEmailTaken
			}
		}
		user.Email = email
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				return User{}, err
			}
			return User{}, s.storeFailure(opUpdate, "hash_failed", err)
		}
		user.PasswordHash = hash
	}
	if input.Role != nil {
		role, err := access.ParseRole(*input.Role)
		if err != nil {
			return User{}, err
		}
		user.Role = role
	}
	if input.Plan != nil {
		plan, err := ParsePlan(*input.Plan)
		if err != nil {
			return User{}, err
		}
		user.Plan = plan
	}
	if input.PlanExpiresAt != nil {
		expiresAt := input.PlanExpiresAt.UTC()
		user.PlanExpiresAt = &expiresAt
	}
	if input.IsBanned != nil {
		user.IsBanned = *input.IsBanned
	}

	user.UpdatedAt = s.clock().UTC()
	if err := db.Omit("board_ids").Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, fmt.Errorf("%w: username or email already in use", apperrors.ErrConflict)
		}
		return User{}, s.storeFailure(opUpdate, "persist_failed", err)
	}
	return user, nil
}

// UpdateProfilePicture stores a new profile picture for the actor and removes the previous one.
func (s *Service) UpdateProfilePicture(ctx context.Context, actor access.Actor, upload media.Upload) (User, error) {
	if upload.Body == nil {
		return User{}, media.ErrNoFile
	}
	if s.media == nil {
		return User{}, s.storeFailure(opProfilePicture, "missing_media", errors.New("media ingress is not configured"))
	}
	user, err := s.Get(ctx, actor.UserID)
	if err != nil {
		return User{}, err
	}
	stored, err := s.media.IngestImage(ctx, upload)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrBadRequest) {
			return User{}, err
		}
		return User{}, s.storeFailure(opProfilePicture, "media_failed", err)
	}

	previous := user.ProfilePicture
	ref := stored.Ref
	err = s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Update("profile_picture", ref).Error
	if err != nil {
		s.removeMedia(ctx, ref)
		return User{}, s.storeFailure(opProfilePicture, "persist_failed", err)
	}
	user.ProfilePicture = &ref
	if previous != nil && *previous != ref {
		s.removeMedia(ctx, *previous)
	}
	return user, nil
}

// Delete removes an account, its boards and its profile picture. Self or admin.
func (s *Service) Delete(ctx context.Context, actor access.Actor, userID string) (User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if err := access.AuthorizeMutation(actor, user.ID); err != nil {
		return User{}, err
	}
	var releaseBoards func(context.Context)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.boards != nil {
			release, err := s.boards.DeleteOwnedBoards(ctx, tx, user.ID)
			if err != nil {
				return err
			}
			releaseBoards = release
		}
		if err := tx.Where("id = ?", user.ID).Delete(&User{}).Error; err != nil {
			return s.storeFailure(opDelete, "persist_failed", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	if releaseBoards != nil {
		releaseBoards(ctx)
	}
	if user.ProfilePicture != nil {
		s.removeMedia(ctx, *user.ProfilePicture)
	}
	s.logger.Info("user deleted", zap.String("user_id", user.ID), zap.String("actor_id", actor.UserID))
	return user, nil
}

// AttachBoard appends boardID to the owner's board list inside tx.
func (s *Service) AttachBoard(tx *gorm.DB, userID string, boardID string) error {
	return s.editBoardList(tx, userID, func(list BoardIDs) BoardIDs { return list.with(boardID) })
}

// DetachBoard removes boardID from the owner's board list inside tx. A missing owner is ignored.
func (s *Service) DetachBoard(tx *gorm.DB, userID string, boardID string) error {
	return s.editBoardList(tx, userID, func(list BoardIDs) BoardIDs { return list.without(boardID) })
}

// Owners resolves user ids to the public owner view used on boards.
func (s *Service) Owners(ctx context.Context, userIDs []string) (map[string]boards.Owner, error) {
	owners := make(map[string]boards.Owner, len(userIDs))
	if len(userIDs) == 0 {
		return owners, nil
	}
	var found []User
	if err := s.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&found).Error; err != nil {
		return nil, s.storeFailure(opOwners, "query_failed", err)
	}
	for _, user := range found {
		owner := boards.Owner{ID: user.ID, Username: user.Username, Email: user.Email}
		if user.ProfilePicture != nil {
			owner.ProfilePicture = *user.ProfilePicture
		}
		owners[user.ID] = owner
	}
	return owners, nil
}

func (s *Service) editBoardList(tx *gorm.DB, userID string, edit func(BoardIDs) BoardIDs) error {
	var user User
	err := tx.Select("id", "board_ids").Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return s.storeFailure(opLedger, "lookup_failed", err)
	}
	updated := edit(user.Boards)
	if err := tx.Model(&User{}).Where("id = ?", userID).Update("board_ids", updated).Error; err != nil {
		return s.storeFailure(opLedger, "persist_failed", err)
	}
	return nil
}

func (s *Service) exists(db *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := db.Model(&User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) removeMedia(ctx context.Context, ref string) {
	if s.media == nil {
		return
	}
	if err := s.media.Remove(ctx, ref); err != nil {
		s.logger.Warn("profile picture removal failed", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *Service) storeFailure(operation, reason string, err error) error {
	s.logError(operation, reason, err)
	return newServiceError(operation, reason, err)
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
	s.logger.Error("user service failure", allFields...)
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username exceeds %d characters", apperrors.ErrValidation, maxUsernameLength)
	}
	return nil
}

var fieldValidator = validator.New()

func validateEmail(email string) error {
	if err := fieldValidator.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	}
	return nil
}
