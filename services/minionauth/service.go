package minionauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/minionworks/authrelay/lib/myerrors"
	"github.com/minionworks/authrelay/lib/myevents"
	"github.com/minionworks/authrelay/lib/mylog"
	"github.com/minionworks/authrelay/lib/mypublisher"
	"github.com/minionworks/authrelay/lib/statetoken"
	"github.com/minionworks/authrelay/services/minionauth/exchanger"
	"github.com/minionworks/authrelay/services/minionauth/minionauthevents"
)

type ServiceConfig struct {
	ClientID      string
	PublicBaseURL string
	DefaultScopes []string
}

type service struct {
	sessionStore *SessionStore
	tokens       statetoken.Generator
	exchanger    exchanger.Exchanger
	publisher    mypublisher.Publisher
	logger       mylog.Logger
	config       ServiceConfig
}

func newService(sessionStore *SessionStore, tokens statetoken.Generator, exch exchanger.Exchanger, pub mypublisher.Publisher, cfg ServiceConfig) *service {
	return &service{
		sessionStore: sessionStore,
		tokens:       tokens,
		exchanger:    exch,
		publisher:    pub,
		logger:       mylog.New("minionauth"),
		config:       cfg,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, minionauthevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", minionauthevents.TopicName, err)
	}

	return nil
}

func (s *service) init(c context.Context, req InitRequest, currentHostname string) (InitResult, error) {
	if req.MinionID == "" || req.ChatID == "" || req.ChatPlatform == "" {
		return InitResult{}, myerrors.NewInvalidInputErrorf("missing required fields: minionId, chatId, chatPlatform")
	}

	platform := ChatPlatform(req.ChatPlatform)
	if !platform.IsValid() {
		return InitResult{}, myerrors.NewInvalidInputErrorf("invalid chatPlatform '%s': must be '%s' or '%s'", req.ChatPlatform, PlatformWhatsApp, PlatformTelegram)
	}

	state, err := s.tokens.Create()
	if err != nil {
		return InitResult{}, myerrors.NewInternalError(fmt.Errorf("error generating state token: %s", err))
	}

	s.logger.Log(c, state, mylog.SeverityInfo, "Start auth session for minion %s, chat %s (%s)", req.MinionID, req.ChatID, platform)

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = s.config.DefaultScopes
	}

	clientID := s.config.ClientID
	if clientID == "" {
		clientID = "demo_client_id"
	}

	// Force the consent screen so the provider hands out a refresh token
	authURL, err := exchanger.ComposeAuthURL(exchanger.AuthURLRequest{
		ClientID:    clientID,
		RedirectURI: s.redirectURI(currentHostname),
		State:       state,
		Scopes:      scopes,
		Prompt:      "consent",
		AccessType:  "offline",
	})
	if err != nil {
		return InitResult{}, myerrors.NewInternalError(fmt.Errorf("error composing auth url: %s", err))
	}

	err = s.sessionStore.Create(c, state, req.MinionID, req.ChatID, platform)
	if err != nil {
		return InitResult{}, myerrors.NewInternalError(fmt.Errorf("error storing session: %s", err))
	}

	s.publishEvent(c, state, minionauthevents.AuthSessionStarted{
		SessionUID:   state,
		MinionID:     req.MinionID,
		ChatID:       req.ChatID,
		ChatPlatform: string(platform),
		Scopes:       strings.Join(scopes, " "),
	})

	return InitResult{
		State:     state,
		AuthURL:   authURL,
		ExpiresIn: int(s.sessionStore.Retention().Seconds()),
	}, nil
}

func (s *service) callback(c context.Context, code string, state string, currentHostname string) (CallbackResult, error) {
	if code == "" || state == "" {
		return CallbackResult{}, myerrors.NewInvalidInputErrorf("missing code or state")
	}

	session, exists, err := s.sessionStore.Get(c, state)
	if err != nil {
		return CallbackResult{}, myerrors.NewInternalError(fmt.Errorf("error fetching session: %s", err))
	}
	if !exists {
		return CallbackResult{}, myerrors.NewInvalidInputErrorf("invalid or expired session")
	}

	s.logger.Log(c, state, mylog.SeverityInfo, "Continue auth session (exchange code) for minion %s", session.MinionID)

	tokens, err := s.exchanger.ExchangeCode(c, code, s.redirectURI(currentHostname))
	if err != nil {
		return CallbackResult{}, myerrors.NewInternalError(err)
	}

	userInfo, err := s.exchanger.FetchUserInfo(c, tokens.AccessToken)
	if err != nil {
		return CallbackResult{}, myerrors.NewInternalError(err)
	}

	found, applied, err := s.sessionStore.Complete(c, state, tokens, userInfo)
	if err != nil {
		return CallbackResult{}, myerrors.NewInternalError(fmt.Errorf("error completing session: %s", err))
	}
	if !found {
		// swept between lookup and completion
		return CallbackResult{}, myerrors.NewInvalidInputErrorf("invalid or expired session")
	}

	if applied {
		s.publishEvent(c, state, minionauthevents.AuthSessionCompleted{
			SessionUID: state,
			MinionID:   session.MinionID,
			ChatID:     session.ChatID,
			Email:      userInfo.Email,
		})
		s.logger.Log(c, state, mylog.SeverityInfo, "Completed auth session for minion %s (%s)", session.MinionID, userInfo.Email)
	}

	return CallbackResult{
		Tokens:   tokens,
		UserInfo: userInfo,
	}, nil
}

func (s *service) notify(c context.Context, req NotifyRequest) error {
	if req.State == "" {
		return myerrors.NewInvalidInputErrorf("missing state parameter")
	}

	session, exists, err := s.sessionStore.Get(c, req.State)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error fetching session: %s", err))
	}
	if !exists {
		return myerrors.NewNotFoundError(fmt.Errorf("session not found"))
	}

	if req.Success {
		// positive completion is driven by the callback exchange; nothing to record
		return nil
	}

	reason := req.ErrorDescription
	if reason == "" {
		reason = req.Error
	}
	if reason == "" {
		reason = "authentication failed"
	}

	_, applied, err := s.sessionStore.Fail(c, req.State, reason)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error failing session: %s", err))
	}

	// A session already in a terminal state stays as it is: the notification
	// is acknowledged but changes nothing
	if applied {
		s.logger.Log(c, req.State, mylog.SeverityInfo, "Auth session failed for minion %s: %s", session.MinionID, reason)
		s.publishEvent(c, req.State, minionauthevents.AuthSessionFailed{
			SessionUID:   req.State,
			MinionID:     session.MinionID,
			ChatID:       session.ChatID,
			ErrorMessage: reason,
		})
	}

	return nil
}

func (s *service) poll(c context.Context, state string) (PollResult, error) {
	if state == "" {
		return PollResult{}, myerrors.NewInvalidInputErrorf("missing state parameter")
	}

	session, exists, err := s.sessionStore.Get(c, state)
	if err != nil {
		return PollResult{}, myerrors.NewInternalError(fmt.Errorf("error fetching session: %s", err))
	}
	if !exists {
		// expired and never-created are indistinguishable on purpose
		return PollResult{}, myerrors.NewNotFoundError(fmt.Errorf("session not found or expired"))
	}

	result := PollResult{Status: session.Status}
	switch session.Status {
	case StatusCompleted:
		result.Tokens = session.Tokens
		result.UserInfo = session.UserInfo
	case StatusFailed:
		result.Error = session.Error
	}

	return result, nil
}

func (s *service) redirectURI(currentHostname string) string {
	base := s.config.PublicBaseURL
	if base == "" {
		base = currentHostname
	}

	return base + "/auth/callback"
}

// publishEvent is advisory: polling remains the only authoritative channel,
// so a publish failure must never fail the request itself.
func (s *service) publishEvent(c context.Context, traceLabel string, event myevents.Event) {
	err := s.publisher.Publish(c, minionauthevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, traceLabel, mylog.SeverityWarn, "Error publishing %s event: %s", event.GetEventTypeName(), err)
	}
}
