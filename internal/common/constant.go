// Package common contains shared constants and sentinel errors used across
// PonyExpress components.
package common

// SessionCookieName is the cookie that carries the session token for
// browser clients.
const SessionCookieName = "pony_express_token"

// AuthorizationHeaderName carries "Bearer <token>" for API clients.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed back on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"
