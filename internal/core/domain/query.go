package domain

import "github.com/samber/lo"

// UserQuery is an in-memory view over a full scan of the user collection.
type UserQuery struct {
	users []*User
}

// NewUserQuery wraps users.
func NewUserQuery(users []*User) *UserQuery {
	return &UserQuery{users: users}
}

// Where narrows the view to users matching pred.
func (q *UserQuery) Where(pred func(*User) bool) *UserQuery {
	return &UserQuery{users: lo.Filter(q.users, func(u *User, _ int) bool { return pred(u) })}
}

// First returns the first user in the view, or nil.
func (q *UserQuery) First() *User {
	if len(q.users) == 0 {
		return nil
	}
	return q.users[0]
}

func (q *UserQuery) Count() int {
	return len(q.users)
}

// Slice returns the users in the view.
func (q *UserQuery) Slice() []*User {
	return q.users
}
