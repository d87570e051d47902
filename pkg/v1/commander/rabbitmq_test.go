package commander_test

import (
	"context"
	"testing"

	"github.com/MichalMitros/stock-watcher/pkg/v1/commander"
	"github.com/MichalMitros/stock-watcher/pkg/v1/commander/mocks"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitRabbitMQSenderSend(t *testing.T) {
	body := []byte(`{"type":"poll"}`)
	routingKey := faker.Word()

	tests := map[string]struct {
		routingKey     string
		wantRoutingKey string
		publisherError error
		wantErr        error
	}{
		"ok": {
			routingKey:     routingKey,
			wantRoutingKey: routingKey,
		},
		"default routing key": {
			wantRoutingKey: commander.DefaultRoutingKey,
		},
		"publisher error": {
			routingKey:     routingKey,
			wantRoutingKey: routingKey,
			publisherError: assert.AnError,
			wantErr:        assert.AnError,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			publisher := mocks.NewRabbitMQPublisher(t)
			publisher.On("Publish", mock.Anything, tt.wantRoutingKey, body).Return(tt.publisherError)

			sender := commander.NewRabbitMQSender(publisher, tt.routingKey)
			err := sender.Send(context.TODO(), body)

			require.ErrorIs(t, err, tt.wantErr, "should return correct error")
		})
	}
}
