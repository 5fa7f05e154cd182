package minionauth

import (
	"time"

	"github.com/minionworks/authrelay/services/minionauth/exchanger"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type ChatPlatform string

const (
	PlatformWhatsApp ChatPlatform = "whatsapp"
	PlatformTelegram ChatPlatform = "telegram"
)

func (p ChatPlatform) IsValid() bool {
	return p == PlatformWhatsApp || p == PlatformTelegram
}

// AuthSession tracks one in-flight oauth flow. The UID doubles as the oauth
// state parameter: it is the only rendezvous point between the browser-side
// consent completion and the polling agent.
type AuthSession struct {
	UID          string
	Status       Status
	MinionID     string
	ChatID       string
	ChatPlatform ChatPlatform
	Tokens       *exchanger.TokenSet
	UserInfo     *exchanger.UserInfo
	Error        string
	CreatedAt    time.Time
}

type InitRequest struct {
	MinionID     string   `json:"minionId"`
	ChatID       string   `json:"chatId"`
	ChatPlatform string   `json:"chatPlatform"`
	Scopes       []string `json:"scopes,omitempty"`
}

type InitResult struct {
	State     string
	AuthURL   string
	ExpiresIn int
}

type CallbackResult struct {
	Tokens   exchanger.TokenSet
	UserInfo exchanger.UserInfo
}

type NotifyRequest struct {
	State            string `json:"state"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

type PollResult struct {
	Status   Status
	Tokens   *exchanger.TokenSet
	UserInfo *exchanger.UserInfo
	Error    string
}
