package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shoplist/internal/pkg/token"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := token.NewService("test-secret", time.Hour)

	tokenString, err := svc.GenerateToken("u-1", "sales_executive")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "sales_executive", claims.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := token.NewService("test-secret", time.Hour)
	verifier := token.NewService("other-secret", time.Hour)

	tokenString, err := issuer.GenerateToken("u-1", "user")
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	svc := token.NewService("test-secret", -time.Minute)

	tokenString, err := svc.GenerateToken("u-1", "user")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	svc := token.NewService("test-secret", time.Hour)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
