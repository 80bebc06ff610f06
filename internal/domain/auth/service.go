package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// GoogleRedirectURL starts the OAuth flow and returns the consent
	// page URL together with the state to verify on callback.
	GoogleRedirectURL(ctx context.Context, userAgent string) (url string, state string)
	// GoogleCallback exchanges the authorization code and logs the
	// matching account in. Accounts are provisioned by HR beforehand;
	// an unknown Google email is rejected, never auto-created.
	GoogleCallback(ctx context.Context, code string) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Profile(ctx context.Context, userID string) (ProfileResponse, error)
}
