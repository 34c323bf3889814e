package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/productapi/pkg/config"
	"github.com/abgdnv/productapi/pkg/messaging"
	"github.com/abgdnv/productapi/pkg/messaging/events"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "PRODUCT_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// PublisherSuite runs the JetStream publisher against a real NATS server.
type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *tcnats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = tcnats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)

	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")

	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")

	require.NoError(s.T(), EnsureStream(s.ctx, s.js, "PRODUCTS", messaging.ProductsWildcardSubject))
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if s.natsContainer != nil {
		if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
			s.logger.Error("Failed to terminate NATS container", "error", err)
		}
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublish_PersistsEventInStream() {
	// given
	publisher := NewNatsPublisher(s.js)
	event := events.NewProductCreated(events.Product{ID: 1, Name: "Chair", Price: 49.9, Qty: 4}, nil)

	// when
	err := publisher.Publish(s.ctx, event)

	// then
	require.NoError(s.T(), err)
	stream, err := s.js.Stream(s.ctx, "PRODUCTS")
	require.NoError(s.T(), err)
	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.ProductsCreatedSubject)
	require.NoError(s.T(), err)

	var got events.ProductEvent
	require.NoError(s.T(), json.Unmarshal(msg.Data, &got))
	require.Equal(s.T(), event.EventID, got.EventID)
	require.Equal(s.T(), "Chair", got.Product.Name)
}

func (s *PublisherSuite) TestEnsureStream_Idempotent() {
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, "PRODUCTS", messaging.ProductsWildcardSubject))
	require.Error(s.T(), EnsureStream(s.ctx, s.js, ""))
}

// orphanEvent targets a subject no stream captures, so JetStream never acknowledges it.
type orphanEvent struct{}

func (orphanEvent) Subject() string          { return "inventory.orphan" }
func (orphanEvent) Payload() ([]byte, error) { return []byte("{}"), nil }

func (s *PublisherSuite) TestResilientPublisher_OpensOnUnroutableSubject() {
	// given
	cfg := config.CircuitBreakerConfig{ConsecutiveFailures: 2, ErrorRatePercent: 100, OpenTimeout: time.Minute}
	publisher := messaging.NewResilientPublisher(NewNatsPublisher(s.js), time.Second, cfg, s.logger)

	// when
	err1 := publisher.Publish(s.ctx, orphanEvent{})
	err2 := publisher.Publish(s.ctx, orphanEvent{})
	err3 := publisher.Publish(s.ctx, orphanEvent{})

	// then
	require.Error(s.T(), err1)
	require.Error(s.T(), err2)
	require.ErrorIs(s.T(), err3, messaging.ErrPublisherUnavailable)
}
