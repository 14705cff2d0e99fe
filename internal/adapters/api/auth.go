package api

import (
	"context"
	"errors"

	"academyhub/internal/domain/account"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResult is what the API hands back after authenticating.
// AccessToken is empty when registration succeeded without logging in.
type LoginResult struct {
	AccessToken  string
	IsSuperAdmin bool
}

type loginWire struct {
	AccessToken  string `mapstructure:"accessToken"`
	Token        string `mapstructure:"token"`
	IsSuperAdmin bool   `mapstructure:"isSuperAdmin"`
}

type userWire struct {
	ID           string `mapstructure:"id"`
	MongoID      string `mapstructure:"_id"`
	FirstName    string `mapstructure:"firstName"`
	LastName     string `mapstructure:"lastName"`
	Email        string `mapstructure:"email"`
	ProfilePhoto string `mapstructure:"profilePhoto"`
	Role         string `mapstructure:"role"`
}

func toLoginResult(obj map[string]any) (LoginResult, error) {
	var w loginWire
	if err := decode(obj, &w); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		AccessToken:  firstNonEmpty(w.AccessToken, w.Token),
		IsSuperAdmin: w.IsSuperAdmin,
	}, nil
}

// Login exchanges credentials for an access token (POST /auth/login).
// POST: on success AccessToken is non-empty
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	const path = "/auth/login"
	obj, err := c.postObject(ctx, path, creds)
	if err != nil {
		return LoginResult{}, err
	}
	res, err := toLoginResult(obj)
	if err != nil {
		return LoginResult{}, decodeFailure(path, err)
	}
	if res.AccessToken == "" {
		return LoginResult{}, decodeFailure(path, errors.New("login response carried no access token"))
	}
	return res, nil
}

// Register creates an account (POST /auth/register).
func (c *Client) Register(ctx context.Context, reg Registration) (LoginResult, error) {
	const path = "/auth/register"
	obj, err := c.postObject(ctx, path, reg)
	if err != nil {
		return LoginResult{}, err
	}
	res, err := toLoginResult(obj)
	if err != nil {
		return LoginResult{}, decodeFailure(path, err)
	}
	return res, nil
}

// Me returns the user that owns the bearer token on ctx (GET /user/me).
func (c *Client) Me(ctx context.Context) (account.User, error) {
	const path = "/user/me"
	obj, err := c.getObject(ctx, path, nil)
	if err != nil {
		return account.User{}, err
	}
	var w userWire
	if err := decode(obj, &w); err != nil {
		return account.User{}, decodeFailure(path, err)
	}
	return account.User{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		Email:        w.Email,
		ProfilePhoto: w.ProfilePhoto,
		Role:         account.NormalizeRole(w.Role),
	}, nil
}
