package session

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Entry names as persisted by every store.
const (
	KeyToken = "token"
	KeyName  = "name"
	KeyEmail = "email"
)

// Values is everything the BFF remembers about a signed-in user.
type Values struct {
	Token string `json:"-"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (v Values) LoggedIn() bool {
	return v.Token != ""
}

func (v Values) entries() map[string]string {
	return map[string]string{
		KeyToken: v.Token,
		KeyName:  v.Name,
		KeyEmail: v.Email,
	}
}

func valuesFrom(m map[string]string) Values {
	return Values{Token: m[KeyToken], Name: m[KeyName], Email: m[KeyEmail]}
}

// Store persists session values by session id. Load of an unknown or
// expired id returns zero Values and no error.
type Store interface {
	Load(ctx context.Context, sid string) (Values, error)
	Save(ctx context.Context, sid string, v Values) error
	Delete(ctx context.Context, sid string) error
}

// Authenticator exchanges credentials for an API token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Values, error)
	Logout(ctx context.Context, token string) error
}
