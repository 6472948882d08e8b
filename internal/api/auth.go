package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nerrad567/gadget-registry/internal/auth"
)

// tokenResponse is the response body for GET /auth/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleIssueToken mints a bearer token for the single API client identity.
// No credentials are required.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	tok, err := auth.GenerateToken(s.secCfg.JWT.Secret, s.tokenTTL())
	if err != nil {
		s.logger.Error("token generation failed",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(tok.TTL.Seconds()),
	})
}

// tokenSubject returns the subject of the verified token on ctx, if any.
func tokenSubject(ctx context.Context) string {
	claims, ok := ctx.Value(ctxKeyClaims).(*auth.Claims)
	if !ok {
		return ""
	}
	return claims.Subject
}

// tokenTTL converts the configured token lifetime (minutes) to a duration.
// Zero falls back to auth.DefaultTokenTTL.
func (s *Server) tokenTTL() time.Duration {
	return time.Duration(s.secCfg.JWT.TokenTTL) * time.Minute
}
