package client

import "context"

// TokenProvider supplies the credential sent in the Token header. It is an
// interface so callers can plug in rotating or fetched credentials; only the
// static form ships here.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken wraps a fixed credential string as a TokenProvider.
func StaticToken(token string) TokenProvider {
	return staticToken(token)
}

type staticToken string

func (t staticToken) Token(context.Context) (string, error) {
	return string(t), nil
}
