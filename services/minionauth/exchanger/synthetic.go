package exchanger

import (
	"context"

	"github.com/google/uuid"
)

// syntheticExchanger simulates a successful token exchange. Used when no
// provider credentials are configured, so a complete init-consent-poll cycle
// can be exercised without talking to Google.
type syntheticExchanger struct{}

func NewSynthetic() *syntheticExchanger {
	return &syntheticExchanger{}
}

func (e syntheticExchanger) ExchangeCode(c context.Context, code string, redirectURI string) (TokenSet, error) {
	suffix := uuid.New().String()

	return TokenSet{
		AccessToken:  "demo_token_" + suffix,
		RefreshToken: "demo_refresh_" + suffix,
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}, nil
}

func (e syntheticExchanger) FetchUserInfo(c context.Context, accessToken string) (UserInfo, error) {
	return UserInfo{
		Email: "user@example.com",
		Name:  "Demo User",
	}, nil
}
