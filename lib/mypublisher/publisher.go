package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/minionworks/authrelay/lib/myevents"
	"github.com/minionworks/authrelay/lib/mypubsub"
	"github.com/minionworks/authrelay/lib/mytime"
)

type publisher struct {
	pubsub mypubsub.PubSub
	nower  mytime.Nower
}

func New(ps mypubsub.PubSub, nower mytime.Nower) *publisher {
	return &publisher{
		pubsub: ps,
		nower:  nower,
	}
}

func (p *publisher) CreateTopic(c context.Context, topicName string) error {
	return p.pubsub.CreateTopic(c, topicName)
}

func (p *publisher) Publish(c context.Context, topic string, event myevents.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error serializing event %s: %s", event.GetEventTypeName(), err)
	}

	envelope := myevents.EventEnvelope{
		UID:           uuid.New().String(),
		CreatedAt:     p.nower.Now(),
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error serializing envelope %s: %s", envelope.String(), err)
	}

	return p.pubsub.Publish(c, topic, string(data))
}
