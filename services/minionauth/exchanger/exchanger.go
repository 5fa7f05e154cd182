package exchanger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	googleAuthEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenEndpoint    = "https://oauth2.googleapis.com/token"
	googleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type AuthURLRequest struct {
	ClientID    string
	RedirectURI string
	State       string
	Scopes      []string
	Prompt      string
	AccessType  string
}

//go:generate mockgen -source=exchanger.go -package exchanger -destination exchanger_mock.go Exchanger
type Exchanger interface {
	ExchangeCode(c context.Context, code string, redirectURI string) (TokenSet, error)
	FetchUserInfo(c context.Context, accessToken string) (UserInfo, error)
}

// New selects the exchange strategy once at startup: without credentials the
// flow runs against a synthetic exchange so it stays testable end-to-end.
func New(clientID string, clientSecret string) Exchanger {
	if clientID == "" || clientSecret == "" {
		return NewSynthetic()
	}

	return NewGoogle(clientID, clientSecret)
}

// ComposeAuthURL builds the provider-side consent URL. Pure function, no
// network or storage side effects.
func ComposeAuthURL(req AuthURLRequest) (string, error) {
	u, err := url.Parse(googleAuthEndpoint)
	if err != nil {
		return "", err
	}

	values := url.Values{
		"client_id":     []string{req.ClientID},
		"redirect_uri":  []string{req.RedirectURI},
		"state":         []string{req.State},
		"scope":         []string{strings.Join(req.Scopes, " ")},
		"response_type": []string{"code"},
	}
	if req.Prompt != "" {
		values.Set("prompt", req.Prompt)
	}
	if req.AccessType != "" {
		values.Set("access_type", req.AccessType)
	}
	u.RawQuery = values.Encode()

	return u.String(), nil
}

type googleExchanger struct {
	clientID     string
	clientSecret string
	tokenURL     string
	userInfoURL  string
}

func NewGoogle(clientID string, clientSecret string) *googleExchanger {
	return &googleExchanger{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     googleTokenEndpoint,
		userInfoURL:  googleUserInfoEndpoint,
	}
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e googleExchanger) ExchangeCode(c context.Context, code string, redirectURI string) (TokenSet, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {e.clientID},
		"client_secret": {e.clientSecret},
		"redirect_uri":  {redirectURI},
		"grant_type":    {"authorization_code"},
	}

	client := newHTTPClient()
	status, body, err := client.PostForm(c, e.tokenURL, form)
	if err != nil {
		return TokenSet{}, fmt.Errorf("error calling token endpoint: %s", err)
	}

	if status != http.StatusOK {
		errResp := tokenErrorResponse{}
		// provider error payloads are best-effort json
		_ = json.Unmarshal(body, &errResp)
		if errResp.ErrorDescription != "" {
			return TokenSet{}, fmt.Errorf("token exchange failed: %s", errResp.ErrorDescription)
		}
		if errResp.Error != "" {
			return TokenSet{}, fmt.Errorf("token exchange failed: %s", errResp.Error)
		}
		return TokenSet{}, fmt.Errorf("token exchange failed with status %d", status)
	}

	tokens := TokenSet{}
	err = json.Unmarshal(body, &tokens)
	if err != nil {
		return TokenSet{}, fmt.Errorf("error parsing token response: %s", err)
	}

	return tokens, nil
}

func (e googleExchanger) FetchUserInfo(c context.Context, accessToken string) (UserInfo, error) {
	client := newHTTPClient()
	status, body, err := client.GetJSON(c, e.userInfoURL, accessToken)
	if err != nil {
		return UserInfo{}, fmt.Errorf("error calling userinfo endpoint: %s", err)
	}

	if status != http.StatusOK {
		return UserInfo{}, fmt.Errorf("userinfo request failed with status %d", status)
	}

	info := UserInfo{}
	err = json.Unmarshal(body, &info)
	if err != nil {
		return UserInfo{}, fmt.Errorf("error parsing userinfo response: %s", err)
	}

	return info, nil
}
