package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestUser_IsLockedOut(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"no end", User{LockoutEnabled: true}, false},
		{"future end", User{LockoutEnabled: true, LockoutEnd: &future}, true},
		{"past end", User{LockoutEnabled: true, LockoutEnd: &past}, false},
		{"disabled", User{LockoutEnabled: false, LockoutEnd: &future}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.IsLockedOut(now); got != tc.want {
				t.Fatalf("IsLockedOut = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUser_CloneIsDeep(t *testing.T) {
	end := time.Now()
	u := &User{
		ID:         "u1",
		LockoutEnd: &end,
		Claims:     []Claim{{"a", "1"}},
		Roles:      []string{"r1"},
	}
	c := u.Clone()
	if !reflect.DeepEqual(u, c) {
		t.Fatalf("clone differs: %+v vs %+v", u, c)
	}

	c.Claims[0].Value = "2"
	c.Roles[0] = "r2"
	*c.LockoutEnd = end.Add(time.Hour)
	if u.Claims[0].Value != "1" || u.Roles[0] != "r1" || !u.LockoutEnd.Equal(end) {
		t.Fatalf("clone shares state with original")
	}

	if (*User)(nil).Clone() != nil {
		t.Fatalf("nil clone must be nil")
	}
}
