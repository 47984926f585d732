package models

import "github.com/golang-jwt/jwt"

// Claims is the JWT payload for both publisher users and advertiser
// companies; exactly one of UserID/CompanyID is set depending on the role.
type Claims struct {
	UserID    string `json:"user_id,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Role      string `json:"role"`
	jwt.StandardClaims
}
