package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/instrument"
	"github.com/shandysiswandi/otpguard/internal/pkg/messaging"
	"github.com/shandysiswandi/otpguard/internal/verification/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	keyOfCorrelationID string = "cID"

	// DefaultDeliveryDestination is the topic/subject delivery workers consume.
	DefaultDeliveryDestination = "otp.delivery"
)

// OTPDeliveryMessage is the wire payload handed to channel senders.
type OTPDeliveryMessage struct {
	TokenID    string    `json:"token_id"`
	Identifier string    `json:"identifier"`
	Purpose    string    `json:"purpose"`
	Channel    string    `json:"channel"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type Messaging struct {
	client      messaging.Messaging
	ins         instrument.Instrumentation
	destination string
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation, destination string) *Messaging {
	if destination == "" {
		destination = DefaultDeliveryDestination
	}
	return &Messaging{client: client, ins: ins, destination: destination}
}

func (m *Messaging) PublishOTPDelivery(ctx context.Context, msg usecase.OTPDeliveryEvent) error {
	ctx, span := m.ins.Tracer("verification.outbound.mq").Start(ctx, "PublishOTPDelivery")
	defer span.End()

	span.SetAttributes(
		attribute.String("otp.channel", msg.Channel.String()),
		attribute.String("otp.purpose", msg.Purpose.String()),
	)

	body, err := json.Marshal(OTPDeliveryMessage{
		TokenID:    msg.TokenID,
		Identifier: msg.Identifier,
		Purpose:    msg.Purpose.String(),
		Channel:    msg.Channel.String(),
		Code:       msg.Code,
		ExpiresAt:  msg.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, m.destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.Identifier),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
