package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/greenbasket/grocer/internal/constants"
	inErrors "github.com/greenbasket/grocer/internal/errors"
)

type jwtToken struct{}

// Issue signs a HS256 token for the given user, issued by the user service
// and consumed by every other service.
func Issue(userID uuid.UUID, secretKey string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			Issuer:    constants.AppUserService,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	)
	signed, err := t.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing token with error=%w", err)
	}
	return signed, nil
}

func Verify(tokenString, secretKey string) (*jwt.Token, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppUserService),
	)
	if err != nil {
		return nil, fmt.Errorf("failed parsing with claims with error=%w", err)
	}
	if !parsed.Valid {
		return nil, inErrors.ErrTokenInvalid
	}
	return parsed, nil
}

func AttachToContext(c context.Context, t *jwt.Token) context.Context {
	return context.WithValue(c, jwtToken{}, t)
}

func FromContext(c context.Context) *jwt.Token {
	t, ok := c.Value(jwtToken{}).(*jwt.Token)
	if !ok {
		return nil
	}
	return t
}

// UserIDFromContext extracts the authenticated user id from the jwt subject
// stashed in the context by the auth middleware.
func UserIDFromContext(c context.Context) (uuid.UUID, error) {
	t := FromContext(c)
	if t == nil {
		return uuid.Nil, inErrors.ErrEmptyAuth
	}
	subject, err := t.Claims.GetSubject()
	if err != nil || subject == "" {
		return uuid.Nil, inErrors.ErrEmptySubject
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
	}
	return userID, nil
}
