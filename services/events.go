package services

import (
	"context"
	"encoding/json"

	"storefront-service/models"
	aws_pkg "storefront-service/pkg/aws"
)

const eventCheckoutRequested = "checkout.requested"

// CheckoutPublisher announces placed reservations to downstream consumers.
// kafka.Producer satisfies it directly.
type CheckoutPublisher interface {
	PublishCheckout(ctx context.Context, event models.CheckoutEvent) error
}

// SNSCheckoutPublisher publishes checkout events to an SNS topic.
type SNSCheckoutPublisher struct {
	client   aws_pkg.SNSPublisher
	topicArn string
}

func NewSNSCheckoutPublisher(client aws_pkg.SNSPublisher, topicArn string) *SNSCheckoutPublisher {
	return &SNSCheckoutPublisher{client: client, topicArn: topicArn}
}

func (p *SNSCheckoutPublisher) PublishCheckout(ctx context.Context, event models.CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.topicArn, payload)
}

// NoopPublisher drops events. Used when EVENT_DRIVER=none.
type NoopPublisher struct{}

func (NoopPublisher) PublishCheckout(context.Context, models.CheckoutEvent) error { return nil }
