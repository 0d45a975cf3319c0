package client

import (
	"context"

	"github.com/dmitrijs2005/neuralart/internal/client/credentials"
)

// User is the identity returned by GET /auth/me.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// Identity is the name shown to the user.
func (u User) Identity() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

// StatusResponse is the body of GET /status/{id}.
type StatusResponse struct {
	Status string  `json:"status"`
	Result *string `json:"result"`
}

// LibraryItem is one element of GET /library.
type LibraryItem struct {
	ID     int64   `json:"id"`
	Status string  `json:"status"`
	Result *string `json:"result"`
}

// Upload is one part of the multipart submission.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

type Client interface {
	Me(ctx context.Context) (User, error)
	Login(ctx context.Context, username, password string) (credentials.Credential, error)
	Signup(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error

	Submit(ctx context.Context, content, style Upload) (int64, error)
	Status(ctx context.Context, id int64) (StatusResponse, error)
	Library(ctx context.Context) ([]LibraryItem, error)
	Delete(ctx context.Context, id int64) error
}
