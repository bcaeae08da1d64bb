package audit

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenMetadata holds claims decoded WITHOUT signature verification, for
// audit telemetry only. It is deliberately a different type from the verified
// identity so these values can never feed an access decision.
type TokenMetadata struct {
	ClientID string
	Patient  string
	FHIRUser string
	Scopes   []string
}

type metadataClaims struct {
	jwt.RegisteredClaims
	Azp      string   `json:"azp"`
	Scope    string   `json:"scope"`
	Patient  string   `json:"patient"`
	FHIRUser string   `json:"fhirUser"`
	ScopeArr []string `json:"scp"`
}

// ExtractTokenMetadata decodes the bearer token from an Authorization header
// value. Decoding failures yield empty metadata; an unreadable token must not
// suppress the audit entry.
func ExtractTokenMetadata(authHeader string) TokenMetadata {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return TokenMetadata{}
	}

	claims := &metadataClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(parts[1], claims); err != nil {
		return TokenMetadata{}
	}

	md := TokenMetadata{
		Patient:  claims.Patient,
		FHIRUser: claims.FHIRUser,
	}

	// Client id: authorized party when present, first audience otherwise.
	md.ClientID = claims.Azp
	if md.ClientID == "" && len(claims.Audience) > 0 {
		md.ClientID = claims.Audience[0]
	}

	if claims.Scope != "" {
		md.Scopes = strings.Fields(claims.Scope)
	} else if len(claims.ScopeArr) > 0 {
		md.Scopes = claims.ScopeArr
	}
	return md
}
