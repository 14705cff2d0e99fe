// Package token reads identity claims out of marketplace access tokens.
//
// Tokens are NOT verified here: the marketplace API verifies them on every
// call. Claims only drive which dashboard and controls to show.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"

	"academyhub/internal/domain/account"
)

// ErrMalformed is returned for strings that are not a three-part JWT.
var ErrMalformed = errors.New("malformed access token")

// Claims is the subset of the access token this service uses.
type Claims struct {
	UserID    string
	Email     string
	Roles     []string // normalized, deduplicated
	ExpiresAt time.Time
}

// Parse decodes claims from raw without checking its signature.
// PRE: raw is non-empty
// POST: Roles contains only normalized role names, in token order
func Parse(raw string) (Claims, error) {
	if strings.Count(raw, ".") != 2 {
		return Claims{}, ErrMalformed
	}
	mc := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c := Claims{
		UserID: firstString(mc, "sub", "userId", "id", "_id"),
		Email:  firstString(mc, "email"),
	}
	if exp, ok := mc["exp"].(float64); ok && exp > 0 {
		c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	seen := map[string]bool{}
	for _, key := range []string{"roles", "role", "authorities"} {
		for _, r := range stringsOf(mc[key]) {
			norm := account.NormalizeRole(r)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			c.Roles = append(c.Roles, norm)
		}
	}
	return c, nil
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := mc[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// stringsOf accepts a single role string, a comma-separated list or a JSON array.
func stringsOf(v any) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if m, ok := item.(map[string]any); ok {
				// [{"name":"TEACHER"}]
				if s, ok := m["name"].(string); ok {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}
