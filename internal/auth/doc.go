// Package auth issues and verifies the API's bearer tokens.
//
// The API has a single client identity. GET /api/v1/auth/token mints an
// HS256 JWT for it without credentials, and every other route requires the
// token in an Authorization: Bearer header. Tokens are stateless: there is
// no refresh flow and no revocation list.
package auth
