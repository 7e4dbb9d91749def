package services

import (
	"context"

	"maintenance-system/pkg/eventbus"
)

// EventPublisher - то, что сервисам нужно от шины событий.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// publishAll публикует события, собранные внутри транзакции. Вызывается после коммита.
func publishAll(ctx context.Context, publisher EventPublisher, events []eventbus.Event) {
	if publisher == nil {
		return
	}
	for _, e := range events {
		publisher.Publish(ctx, e)
	}
}
