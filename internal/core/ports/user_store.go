package ports

import (
	"context"
	"time"

	"github.com/99minutos/identity-store/internal/core/domain"
)

// Capability groups exposed to the identity framework. Callers depend on the
// narrowest group they need; service.UserStore satisfies all of them.
//
// Every method taking a *domain.User mutates that object in place before
// persisting. Get* methods read the persisted document and fall back to the
// passed object only when the document no longer exists.

// UserStore is the core create/read/update/delete capability.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) (domain.IdentityResult, error)
	Delete(ctx context.Context, u *domain.User) (domain.IdentityResult, error)
	Update(ctx context.Context, u *domain.User) (domain.IdentityResult, error)
	// FindBy* return (nil, nil) when nothing matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByName(ctx context.Context, normalizedUserName string) (*domain.User, error)
	GetUserID(ctx context.Context, u *domain.User) (string, error)
	GetUserName(ctx context.Context, u *domain.User) (string, error)
	SetUserName(ctx context.Context, u *domain.User, userName string) error
	GetNormalizedUserName(ctx context.Context, u *domain.User) (string, error)
	SetNormalizedUserName(ctx context.Context, u *domain.User, normalizedName string) error
}

// UserPatchStore offers explicit whole-document and per-field saves.
type UserPatchStore interface {
	ReplaceWhole(ctx context.Context, u *domain.User) error
	PatchFields(ctx context.Context, u *domain.User, fields ...string) error
	Save(ctx context.Context, u *domain.User) ([]string, error)
}

type UserClaimStore interface {
	GetClaims(ctx context.Context, u *domain.User) ([]domain.Claim, error)
	AddClaims(ctx context.Context, u *domain.User, claims ...domain.Claim) error
	ReplaceClaim(ctx context.Context, u *domain.User, claim, newClaim domain.Claim) error
	RemoveClaims(ctx context.Context, u *domain.User, claims ...domain.Claim) error
	GetUsersForClaim(ctx context.Context, claim domain.Claim) ([]*domain.User, error)
}

type UserLoginStore interface {
	AddLogin(ctx context.Context, u *domain.User, login domain.UserLogin) error
	RemoveLogin(ctx context.Context, u *domain.User, loginProvider, providerKey string) error
	GetLogins(ctx context.Context, u *domain.User) ([]domain.UserLogin, error)
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*domain.User, error)
}

// UserRoleStore manages role membership. Role names are normalized names as
// understood by the role store; unknown roles are ignored.
type UserRoleStore interface {
	AddToRole(ctx context.Context, u *domain.User, normalizedRoleName string) error
	RemoveFromRole(ctx context.Context, u *domain.User, normalizedRoleName string) error
	GetRoles(ctx context.Context, u *domain.User) ([]string, error)
	IsInRole(ctx context.Context, u *domain.User, normalizedRoleName string) (bool, error)
	GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*domain.User, error)
}

type UserPasswordStore interface {
	SetPasswordHash(ctx context.Context, u *domain.User, passwordHash string) error
	GetPasswordHash(ctx context.Context, u *domain.User) (string, error)
	HasPassword(ctx context.Context, u *domain.User) (bool, error)
}

type UserSecurityStampStore interface {
	SetSecurityStamp(ctx context.Context, u *domain.User, stamp string) error
	GetSecurityStamp(ctx context.Context, u *domain.User) (string, error)
}

type UserEmailStore interface {
	SetEmail(ctx context.Context, u *domain.User, email string) error
	GetEmail(ctx context.Context, u *domain.User) (string, error)
	GetEmailConfirmed(ctx context.Context, u *domain.User) (bool, error)
	SetEmailConfirmed(ctx context.Context, u *domain.User, confirmed bool) error
	FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User, error)
	GetNormalizedEmail(ctx context.Context, u *domain.User) (string, error)
	SetNormalizedEmail(ctx context.Context, u *domain.User, normalizedEmail string) error
}

type UserPhoneNumberStore interface {
	SetPhoneNumber(ctx context.Context, u *domain.User, phoneNumber string) error
	GetPhoneNumber(ctx context.Context, u *domain.User) (string, error)
	GetPhoneNumberConfirmed(ctx context.Context, u *domain.User) (bool, error)
	SetPhoneNumberConfirmed(ctx context.Context, u *domain.User, confirmed bool) error
}

type UserLockoutStore interface {
	GetLockoutEndDate(ctx context.Context, u *domain.User) (*time.Time, error)
	SetLockoutEndDate(ctx context.Context, u *domain.User, end *time.Time) error
	IncrementAccessFailedCount(ctx context.Context, u *domain.User) (int, error)
	ResetAccessFailedCount(ctx context.Context, u *domain.User) error
	GetAccessFailedCount(ctx context.Context, u *domain.User) (int, error)
	GetLockoutEnabled(ctx context.Context, u *domain.User) (bool, error)
	SetLockoutEnabled(ctx context.Context, u *domain.User, enabled bool) error
}

type UserTwoFactorStore interface {
	SetTwoFactorEnabled(ctx context.Context, u *domain.User, enabled bool) error
	GetTwoFactorEnabled(ctx context.Context, u *domain.User) (bool, error)
}

// UserAuthenticationTokenStore stores provider tokens keyed by (provider, name).
type UserAuthenticationTokenStore interface {
	SetToken(ctx context.Context, u *domain.User, loginProvider, name, value string) error
	RemoveToken(ctx context.Context, u *domain.User, loginProvider, name string) error
	GetToken(ctx context.Context, u *domain.User, loginProvider, name string) (string, bool, error)
}

type UserAuthenticatorKeyStore interface {
	SetAuthenticatorKey(ctx context.Context, u *domain.User, key string) error
	GetAuthenticatorKey(ctx context.Context, u *domain.User) (string, error)
}

type UserTwoFactorRecoveryCodeStore interface {
	ReplaceCodes(ctx context.Context, u *domain.User, codes ...string) error
	RedeemCode(ctx context.Context, u *domain.User, code string) (bool, error)
	CountCodes(ctx context.Context, u *domain.User) (int, error)
}

// QueryableUserStore exposes a full scan for ad-hoc filtering. No paging.
type QueryableUserStore interface {
	Users(ctx context.Context) (*domain.UserQuery, error)
}
