package domain

import "github.com/samber/lo"

// Collection helpers. They never mutate their input slices; callers assign
// the returned slice back onto the user and persist it as a whole.

// HasClaim reports whether claims contains c by (type, value).
func HasClaim(claims []Claim, c Claim) bool {
	return lo.Contains(claims, c)
}

// AddClaim appends c unless an identical (type, value) pair exists.
func AddClaim(claims []Claim, c Claim) []Claim {
	if HasClaim(claims, c) {
		return claims
	}
	return append(append([]Claim(nil), claims...), c)
}

// ReplaceClaim drops every claim sharing old's type, then appends replacement.
func ReplaceClaim(claims []Claim, old, replacement Claim) []Claim {
	out := lo.Reject(claims, func(c Claim, _ int) bool { return c.Type == old.Type })
	return append(out, replacement)
}

// RemoveClaims drops every claim matching one of remove by (type, value).
func RemoveClaims(claims []Claim, remove ...Claim) []Claim {
	drop := make(map[Claim]struct{}, len(remove))
	for _, c := range remove {
		drop[c] = struct{}{}
	}
	return lo.Reject(claims, func(c Claim, _ int) bool {
		_, ok := drop[c]
		return ok
	})
}

// FindLogin returns the login with key, if any.
func FindLogin(logins []UserLogin, key LoginKey) (UserLogin, bool) {
	return lo.Find(logins, func(l UserLogin) bool { return l.Key() == key })
}

// AddLogin appends l unless a login with the same (provider, key) exists.
func AddLogin(logins []UserLogin, l UserLogin) ([]UserLogin, bool) {
	if _, ok := FindLogin(logins, l.Key()); ok {
		return logins, false
	}
	return append(append([]UserLogin(nil), logins...), l), true
}

// RemoveLogin drops the login with key.
func RemoveLogin(logins []UserLogin, key LoginKey) []UserLogin {
	return lo.Reject(logins, func(l UserLogin, _ int) bool { return l.Key() == key })
}

type tokenKey struct {
	provider string
	name     string
}

// FindToken returns the value of the (provider, name) token.
func FindToken(tokens []UserToken, provider, name string) (string, bool) {
	t, ok := lo.Find(tokens, func(t UserToken) bool {
		return t.LoginProvider == provider && t.Name == name
	})
	return t.Value, ok
}

// ApplyTokenUpsert sets the value of the (provider, name) token, appending it
// when absent. Order of existing tokens is preserved and the result holds at
// most one entry per (provider, name).
func ApplyTokenUpsert(tokens []UserToken, provider, name, value string) []UserToken {
	seen := make(map[tokenKey]struct{}, len(tokens)+1)
	out := make([]UserToken, 0, len(tokens)+1)
	found := false
	for _, t := range tokens {
		k := tokenKey{t.LoginProvider, t.Name}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if t.LoginProvider == provider && t.Name == name {
			t.Value = value
			found = true
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, UserToken{LoginProvider: provider, Name: name, Value: value})
	}
	return out
}

// RemoveToken drops the (provider, name) token.
func RemoveToken(tokens []UserToken, provider, name string) []UserToken {
	return lo.Reject(tokens, func(t UserToken, _ int) bool {
		return t.LoginProvider == provider && t.Name == name
	})
}

// AddRole appends roleID unless already present.
func AddRole(roles []string, roleID string) []string {
	if lo.Contains(roles, roleID) {
		return roles
	}
	return append(append([]string(nil), roles...), roleID)
}

// RemoveRole drops roleID.
func RemoveRole(roles []string, roleID string) []string {
	return lo.Without(roles, roleID)
}

// NewRecoveryCodes builds an unredeemed code set, skipping duplicates.
func NewRecoveryCodes(codes []string) []RecoveryCode {
	return lo.Map(lo.Uniq(codes), func(c string, _ int) RecoveryCode {
		return RecoveryCode{Code: c}
	})
}

// RedeemRecoveryCode flips the first unredeemed entry matching code. It
// reports false when code is unknown or already redeemed.
func RedeemRecoveryCode(codes []RecoveryCode, code string) ([]RecoveryCode, bool) {
	_, idx, ok := lo.FindIndexOf(codes, func(c RecoveryCode) bool {
		return c.Code == code && !c.Redeemed
	})
	if !ok {
		return codes, false
	}
	out := append([]RecoveryCode(nil), codes...)
	out[idx].Redeemed = true
	return out, true
}

// CountUnredeemed returns the number of codes still usable.
func CountUnredeemed(codes []RecoveryCode) int {
	return lo.CountBy(codes, func(c RecoveryCode) bool { return !c.Redeemed })
}
