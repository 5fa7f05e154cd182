package minionauthevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minionworks/authrelay/lib/myerrors"
	"github.com/minionworks/authrelay/lib/myevents"
)

const (
	TopicName                = "minionauth"
	authSessionStartedName   = TopicName + ".session.started"
	authSessionCompletedName = TopicName + ".session.completed"
	authSessionFailedName    = TopicName + ".session.failed"
)

type AuthEventService interface {
	OnAuthSessionStarted(c context.Context, topic string, event AuthSessionStarted) error
	OnAuthSessionCompleted(c context.Context, topic string, event AuthSessionCompleted) error
	OnAuthSessionFailed(c context.Context, topic string, event AuthSessionFailed) error
}

func DispatchEvent(c context.Context, reader io.Reader, service AuthEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case authSessionStartedName:
		event := AuthSessionStarted{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnAuthSessionStarted(c, envelope.Topic, event)
	case authSessionCompletedName:
		event := AuthSessionCompleted{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnAuthSessionCompleted(c, envelope.Topic, event)
	case authSessionFailedName:
		event := AuthSessionFailed{}
		err := json.Unmarshal([]byte(envelope.EventPayload), &event)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnAuthSessionFailed(c, envelope.Topic, event)
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event type %s", envelope.EventTypeName))
	}
}

type AuthSessionStarted struct {
	SessionUID   string
	MinionID     string
	ChatID       string
	ChatPlatform string
	Scopes       string
}

func (e AuthSessionStarted) GetEventTypeName() string {
	return authSessionStartedName
}

func (e AuthSessionStarted) GetAggregateName() string {
	return e.MinionID
}

type AuthSessionCompleted struct {
	SessionUID string
	MinionID   string
	ChatID     string
	Email      string
}

func (e AuthSessionCompleted) GetEventTypeName() string {
	return authSessionCompletedName
}

func (e AuthSessionCompleted) GetAggregateName() string {
	return e.MinionID
}

type AuthSessionFailed struct {
	SessionUID   string
	MinionID     string
	ChatID       string
	ErrorMessage string
}

func (e AuthSessionFailed) GetEventTypeName() string {
	return authSessionFailedName
}

func (e AuthSessionFailed) GetAggregateName() string {
	return e.MinionID
}
