//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"gdprkv/internal/audit/models"
	"gdprkv/internal/audit/publisher"
	"gdprkv/internal/platform/config"
	"gdprkv/internal/platform/kafka"
	"gdprkv/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *ProducerSuite) TestDisabledWithoutBrokers() {
	p, err := kafka.NewProducer(context.Background(), config.KafkaConfig{AuditTopic: "unused"})
	s.Require().NoError(err)
	s.Nil(p)
}

func (s *ProducerSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "gdprkv.audit-events.it-" + time.Now().Format("150405.000")

	p, err := kafka.NewProducer(ctx, config.KafkaConfig{Brokers: s.redpanda.Brokers, AuditTopic: topic})
	s.Require().NoError(err)
	defer p.Close()
	s.Require().NoError(p.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(p.EnsureTopic(ctx, 1, 1), "existing topic is not an error")
	s.Require().NoError(p.Health(ctx))

	event := models.Event{
		SubjectID: "s1",
		TsUlid:    models.NewTsUlid(1000),
		EventType: models.EventPutRequested,
		RequestID: "req-1",
		Timestamp: 1000,
		PrevHash:  models.ZeroHash,
		ItemKey:   "k1",
	}
	s.Require().NoError(event.Seal())
	s.Require().NoError(publisher.NewKafka(p).Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollRecords(ctx, 1)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("s1", string(records[0].Key))

	var got models.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(event.Hash, got.Hash)
	s.Equal(models.EventPutRequested, got.EventType)
}
