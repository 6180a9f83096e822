package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amaracare/careops-backend/internal/access"
	"github.com/amaracare/careops-backend/internal/users"
	pkgAuth "github.com/amaracare/careops-backend/pkg/auth"
	"github.com/amaracare/careops-backend/pkg/auth/session"
	"github.com/amaracare/careops-backend/pkg/config"
	"github.com/amaracare/careops-backend/pkg/db/models"
	dbtypes "github.com/amaracare/careops-backend/pkg/db/types"
	"github.com/amaracare/careops-backend/pkg/enums"
	pkgerrors "github.com/amaracare/careops-backend/pkg/errors"
	"github.com/amaracare/careops-backend/pkg/security"
	"github.com/amaracare/careops-backend/pkg/types"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	inactiveAccountMessage    = "account inactive, contact an administrator"
	invalidSessionMessage     = "session is no longer valid"
)

// Service defines the behavior needed by the auth and navigation controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Resume(ctx context.Context, accessToken string) (*SessionInfo, error)
	SignOut(ctx context.Context, accessToken string) error
	UpdateIdentity(ctx context.Context, actor Actor, targetID uuid.UUID, req UpdateIdentityRequest) (*users.UserDTO, error)
}

type service struct {
	users   userRepository
	session sessionManager
	routes  *access.Policy
	jwtCfg  config.JWTConfig
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error)
}

type sessionManager interface {
	Generate(ctx context.Context, userID, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
	RevokeAll(ctx context.Context, userID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	RoutePolicy    *access.Policy
	JWTConfig      config.JWTConfig
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.RoutePolicy == nil {
		params.RoutePolicy = access.DefaultPolicy()
	}
	return &service{
		users:   params.UserRepo,
		session: params.SessionManager,
		routes:  params.RoutePolicy,
		jwtCfg:  params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	role, err := enums.ParseRole(user.Role)
	if err != nil {
		// A record carrying a role outside the closed set grants nothing.
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	tokenPayload := pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    accessID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, tokenPayload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, user.ID.String(), accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
		DefaultRoute: s.routes.DefaultRouteFor(role),
	}, nil
}

// Resume validates an access token against the live session records and
// re-reads the identity so deactivations take effect on the next check.
func (s *service) Resume(ctx context.Context, accessToken string) (*SessionInfo, error) {
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSessionMessage)
	}

	alive, err := s.session.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session")
	}
	if !alive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSessionMessage)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSessionMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeAccountInactive, inactiveAccountMessage)
	}

	role, err := enums.ParseRole(user.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSessionMessage)
	}

	return &SessionInfo{
		User:         users.FromModel(user),
		Role:         role,
		DefaultRoute: s.routes.DefaultRouteFor(role),
	}, nil
}

// SignOut revokes the server-side session tied to the token. An unparseable
// token has nothing to revoke and is not an error.
func (s *service) SignOut(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) UpdateIdentity(ctx context.Context, actor Actor, targetID uuid.UUID, req UpdateIdentityRequest) (*users.UserDTO, error) {
	// The actor's own record is read fresh, so a deactivated or demoted
	// account loses write access even while its token is still valid.
	actorRec, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSessionMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup actor")
	}
	if !actorRec.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeAccountInactive, inactiveAccountMessage)
	}

	isAdmin := actorRec.Role == string(enums.RoleAdmin)
	if !isAdmin && actor.ID != targetID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify another user's record")
	}
	if !isAdmin && (req.Role != nil || req.IsActive != nil) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role and activation changes require an administrator")
	}

	target := actorRec
	if actor.ID != targetID {
		target, err = s.users.FindByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
		}
	}

	fields := map[string]any{}

	effectiveRole := enums.Role(target.Role)
	if req.Role != nil {
		role, err := enums.ParseRole(*req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		effectiveRole = role
		fields["role"] = string(role)
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name must not be blank")
		}
		fields["full_name"] = name
	}
	if req.ContactInfo != nil {
		fields["contact_info"] = strings.TrimSpace(*req.ContactInfo)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if req.AdditionalInfo != nil {
		if _, err := types.DecodeProfile(effectiveRole, req.AdditionalInfo); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["additional_info"] = dbtypes.JSONMap(req.AdditionalInfo)
	} else if req.Role != nil && *req.Role != target.Role {
		// The stored attribute bag belongs to the old role; re-check it
		// against the new one so the record stays internally consistent.
		if _, err := types.DecodeProfile(effectiveRole, target.AdditionalInfo); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				"existing additional info does not fit the new role, provide a replacement")
		}
	}

	if len(fields) == 0 {
		return users.FromModel(target), nil
	}
	fields["updated_at"] = time.Now().UTC()

	updated, err := s.users.UpdateFields(ctx, targetID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	// Deactivation must fail closed: tear down the target's live sessions so
	// the next authenticated call is rejected, not tolerated until expiry.
	if req.IsActive != nil && !*req.IsActive {
		if err := s.session.RevokeAll(ctx, targetID.String()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke sessions")
		}
	}
	return users.FromModel(updated), nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	// Wrong password and unknown email must stay indistinguishable, but a
	// deactivated account with correct credentials gets the explicit notice.
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeAccountInactive, inactiveAccountMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}
