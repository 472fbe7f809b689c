package ports

import "context"

// ClaimInput is a (type, value) pair supplied with an imported user.
type ClaimInput struct {
	Type  string
	Value string
}

// UserImportInput is the DTO passed from the transport layer to ImportService.
type UserImportInput struct {
	UserName    string
	Email       string
	PhoneNumber string
	Password    string   // optional: users without one can only sign in externally
	Roles       []string // role names, normalized by the service
	Claims      []ClaimInput
}

// ImportService provisions users in bulk.
type ImportService interface {
	Process(ctx context.Context, in UserImportInput) error
}
