package domain

import "time"

const (
	RoleAdmin = "admin"
)

// Document field paths. They match the bson tags on User and are the only
// paths the store ever issues field-set or field-add writes against.
const (
	FieldID                   = "_id"
	FieldUserName             = "user_name"
	FieldNormalizedUserName   = "normalized_user_name"
	FieldEmail                = "email"
	FieldNormalizedEmail      = "normalized_email"
	FieldEmailConfirmed       = "email_confirmed"
	FieldPasswordHash         = "password_hash"
	FieldSecurityStamp        = "security_stamp"
	FieldPhoneNumber          = "phone_number"
	FieldPhoneNumberConfirmed = "phone_number_confirmed"
	FieldTwoFactorEnabled     = "two_factor_enabled"
	FieldAuthenticatorKey     = "authenticator_key"
	FieldLockoutEnd           = "lockout_end"
	FieldLockoutEnabled       = "lockout_enabled"
	FieldAccessFailedCount    = "access_failed_count"
	FieldClaims               = "claims"
	FieldLogins               = "logins"
	FieldTokens               = "tokens"
	FieldRoles                = "roles"
	FieldRecoveryCodes        = "recovery_codes"
	FieldCreatedAt            = "created_at"
)

// User is the identity aggregate root. Every field is persisted in a single
// document; collections are stored as arrays but treated as sets keyed by
// their natural key.
type User struct {
	ID                   string         `json:"id" bson:"_id"`
	UserName             string         `json:"user_name" bson:"user_name"`
	NormalizedUserName   string         `json:"normalized_user_name" bson:"normalized_user_name"`
	Email                string         `json:"email" bson:"email"`
	NormalizedEmail      string         `json:"normalized_email" bson:"normalized_email"`
	EmailConfirmed       bool           `json:"email_confirmed" bson:"email_confirmed"`
	PasswordHash         string         `json:"-" bson:"password_hash"`
	SecurityStamp        string         `json:"-" bson:"security_stamp"`
	PhoneNumber          string         `json:"phone_number" bson:"phone_number"`
	PhoneNumberConfirmed bool           `json:"phone_number_confirmed" bson:"phone_number_confirmed"`
	TwoFactorEnabled     bool           `json:"two_factor_enabled" bson:"two_factor_enabled"`
	AuthenticatorKey     string         `json:"-" bson:"authenticator_key"`
	LockoutEnd           *time.Time     `json:"lockout_end" bson:"lockout_end"`
	LockoutEnabled       bool           `json:"lockout_enabled" bson:"lockout_enabled"`
	AccessFailedCount    int            `json:"access_failed_count" bson:"access_failed_count"`
	Claims               []Claim        `json:"claims" bson:"claims"`
	Logins               []UserLogin    `json:"logins" bson:"logins"`
	Tokens               []UserToken    `json:"-" bson:"tokens"`
	Roles                []string       `json:"roles" bson:"roles"`
	RecoveryCodes        []RecoveryCode `json:"-" bson:"recovery_codes"`
	CreatedAt            time.Time      `json:"created_at" bson:"created_at"`
}

// Claim is a (type, value) statement about the user.
type Claim struct {
	Type  string `json:"type" bson:"type"`
	Value string `json:"value" bson:"value"`
}

// UserLogin links the user to an external login provider. Unique by
// (LoginProvider, ProviderKey).
type UserLogin struct {
	LoginProvider       string `json:"login_provider" bson:"login_provider"`
	ProviderKey         string `json:"provider_key" bson:"provider_key"`
	ProviderDisplayName string `json:"provider_display_name" bson:"provider_display_name"`
}

// Key returns the natural key of the login.
func (l UserLogin) Key() LoginKey {
	return LoginKey{Provider: l.LoginProvider, Key: l.ProviderKey}
}

// LoginKey identifies an external login.
type LoginKey struct {
	Provider string
	Key      string
}

// UserToken is a provider-scoped named token. Unique by (LoginProvider, Name).
type UserToken struct {
	LoginProvider string `json:"login_provider" bson:"login_provider"`
	Name          string `json:"name" bson:"name"`
	Value         string `json:"value" bson:"value"`
}

// RecoveryCode is a single-use two-factor fallback secret.
type RecoveryCode struct {
	Code     string `json:"code" bson:"code"`
	Redeemed bool   `json:"redeemed" bson:"redeemed"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LockoutEnd != nil {
		end := *u.LockoutEnd
		c.LockoutEnd = &end
	}
	c.Claims = append([]Claim(nil), u.Claims...)
	c.Logins = append([]UserLogin(nil), u.Logins...)
	c.Tokens = append([]UserToken(nil), u.Tokens...)
	c.Roles = append([]string(nil), u.Roles...)
	c.RecoveryCodes = append([]RecoveryCode(nil), u.RecoveryCodes...)
	return &c
}

// EnsureCollections replaces nil collections with empty ones. A nil slice is
// encoded as null, and a null field cannot take a field-add.
func (u *User) EnsureCollections() {
	if u.Claims == nil {
		u.Claims = []Claim{}
	}
	if u.Logins == nil {
		u.Logins = []UserLogin{}
	}
	if u.Tokens == nil {
		u.Tokens = []UserToken{}
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	if u.RecoveryCodes == nil {
		u.RecoveryCodes = []RecoveryCode{}
	}
}

// IsLockedOut reports whether lockout applies to the user at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now)
}
