package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/authd/internal/domain"
	pkgkafka "github.com/utafrali/authd/pkg/kafka"
)

// Kafka topic constants for auth domain events.
const (
	TopicApplicationCreated     = "auth.application.created"
	TopicApplicationDeactivated = "auth.application.deactivated"
	TopicTokenIssued            = "auth.token.issued"
)

// Aggregate type constants.
const (
	AggregateTypeApplication = "application"
	AggregateTypeToken       = "token"
)

// Source identifier for events originating from the auth service.
const SourceAuthService = "authd"

// ApplicationCreatedData is the payload for an auth.application.created event.
// The client secret is never published.
type ApplicationCreatedData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// ApplicationDeactivatedData is the payload for an auth.application.deactivated event.
type ApplicationDeactivatedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TokenIssuedData is the payload for an auth.token.issued event. The token
// string itself is never published.
type TokenIssuedData struct {
	TokenID       string    `json:"token_id"`
	Kind          string    `json:"kind"` // "access" or "refresh"
	UserID        string    `json:"user_id"`
	ApplicationID string    `json:"application_id"`
	Expiration    time.Time `json:"expiration"`
}

// Producer publishes auth domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the auth service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishApplicationCreated publishes an auth.application.created event.
func (p *Producer) PublishApplicationCreated(ctx context.Context, app *domain.Application) error {
	data := ApplicationCreatedData{
		ID:       app.ID,
		Name:     app.Name,
		Type:     app.Type,
		ClientID: app.ClientID,
	}

	event, err := pkgkafka.NewEvent(TopicApplicationCreated, app.ID, AggregateTypeApplication, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create application.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicApplicationCreated, event); err != nil {
		return fmt.Errorf("publish application.created event: %w", err)
	}

	return nil
}

// PublishApplicationDeactivated publishes an auth.application.deactivated event.
func (p *Producer) PublishApplicationDeactivated(ctx context.Context, app *domain.Application) error {
	data := ApplicationDeactivatedData{
		ID:   app.ID,
		Name: app.Name,
	}

	event, err := pkgkafka.NewEvent(TopicApplicationDeactivated, app.ID, AggregateTypeApplication, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create application.deactivated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicApplicationDeactivated, event); err != nil {
		return fmt.Errorf("publish application.deactivated event: %w", err)
	}

	return nil
}

// PublishTokenIssued publishes an auth.token.issued event.
func (p *Producer) PublishTokenIssued(ctx context.Context, data TokenIssuedData) error {
	event, err := pkgkafka.NewEvent(TopicTokenIssued, data.TokenID, AggregateTypeToken, SourceAuthService, data)
	if err != nil {
		return fmt.Errorf("create token.issued event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicTokenIssued, event); err != nil {
		return fmt.Errorf("publish token.issued event: %w", err)
	}

	return nil
}
