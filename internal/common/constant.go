package common

// Cookie names used to carry the session tokens over HTTP.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)
