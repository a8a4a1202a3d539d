package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims identify an operator of the admin API. WorkspaceID scopes every
// request to one chat workspace; a token never grants access to another.
type Claims struct {
	jwt.RegisteredClaims

	OperatorID  string    `json:"operator_id"`
	WorkspaceID string    `json:"workspace_id"`
	Role        string    `json:"role"`
	TokenType   TokenType `json:"token_type"`
}
