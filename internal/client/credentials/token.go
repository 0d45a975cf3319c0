package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/neuralart/internal/dbx"
)

const (
	tokenKey   = "access_token"
	expiresKey = "access_token_expires_at"
)

// TokenStore keeps a client-held access token in the local metadata table
// and sends it as "Authorization: Bearer <token>".
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Persist replaces the stored token and its expiry in one transaction.
func (s *TokenStore) Persist(ctx context.Context, c Credential) error {
	if c.Empty() {
		return s.Clear(ctx)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, tokenKey, []byte(c.Value)); err != nil {
			return err
		}
		if c.ExpiresAt.IsZero() {
			return repo.Delete(ctx, expiresKey)
		}
		return repo.Set(ctx, expiresKey, []byte(strconv.FormatInt(c.ExpiresAt.Unix(), 10)))
	})
}

func (s *TokenStore) Read(ctx context.Context) (Credential, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, tokenKey)
	if err != nil {
		return Credential{}, fmt.Errorf("read token: %w", err)
	}
	if len(token) == 0 {
		return Credential{}, nil
	}

	c := FromToken(string(token))

	raw, err := repo.Get(ctx, expiresKey)
	if err != nil {
		return Credential{}, fmt.Errorf("read token expiry: %w", err)
	}
	if len(raw) > 0 {
		sec, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Credential{}, fmt.Errorf("parse token expiry: %w", err)
		}
		c.ExpiresAt = time.Unix(sec, 0)
	}
	return c, nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, tokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, expiresKey)
	})
}

func (s *TokenStore) Apply(req *http.Request, c Credential) {
	req.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(c.Value, "Bearer "))
}
