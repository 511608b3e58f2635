package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"
)

// StartOffset values accepted by ConsumerConfig.
const (
	StartEarliest = "earliest"
	StartLatest   = "latest"
)

// KafkaConfig configures a Kafka transport.
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Log      *slog.Logger
}

// Kafka is a Transport backed by franz-go. Every Consumer and Producer it
// hands out owns a dedicated client; an extra client serves admin calls.
type Kafka struct {
	cfg KafkaConfig
	log *slog.Logger

	admin *kgo.Client
	adm   *kadm.Client

	mu       sync.Mutex
	closed   bool
	children []io.Closer
}

var _ Transport = (*Kafka)(nil)

// NewKafka connects an admin client and returns the transport.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("transport: no brokers configured")
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	admin, err := kgo.NewClient(clientOpts(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("transport: admin client: %w", err)
	}

	return &Kafka{
		cfg:   cfg,
		log:   cfg.Log,
		admin: admin,
		adm:   kadm.NewClient(admin),
	}, nil
}

func clientOpts(cfg KafkaConfig) []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Brokers...)}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	return opts
}

// Consumer opens a group subscription with its own client. Marked records
// are committed by the client's auto-commit of marks.
func (k *Kafka) Consumer(cfg ConsumerConfig) (Consumer, error) {
	opts := clientOpts(k.cfg)
	opts = append(opts,
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.AutoCommitMarks(),
	)

	switch cfg.StartOffset {
	case StartEarliest:
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	case StartLatest, "":
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()))
	default:
		return nil, fmt.Errorf("transport: unknown start offset %q", cfg.StartOffset)
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("transport: consumer client for %s: %w", cfg.Topic, err)
	}

	c := &kafkaConsumer{client: client, max: cfg.MaxPollRecords}
	if err := k.adopt(c); err != nil {
		client.Close()
		return nil, err
	}
	k.log.Debug("kafka consumer opened", "topic", cfg.Topic, "group", cfg.Group)
	return c, nil
}

// Producer opens a synchronous producer with its own client.
func (k *Kafka) Producer() (Producer, error) {
	client, err := kgo.NewClient(clientOpts(k.cfg)...)
	if err != nil {
		return nil, fmt.Errorf("transport: producer client: %w", err)
	}

	p := &kafkaProducer{client: client}
	if err := k.adopt(p); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

// EnsureTopic creates the topic with broker-default partitions and
// replication. An existing topic is not an error.
func (k *Kafka) EnsureTopic(ctx context.Context, topic string) error {
	resp, err := k.adm.CreateTopic(ctx, -1, -1, nil, topic)
	if err != nil {
		if errors.Is(err, kerr.TopicAlreadyExists) {
			return nil
		}
		return fmt.Errorf("transport: create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("transport: create topic %s: %w", topic, resp.Err)
	}
	k.log.Debug("topic ensured", "topic", topic)
	return nil
}

// Close closes every consumer and producer handed out, then the admin client.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	children := k.children
	k.children = nil
	k.mu.Unlock()

	var err error
	for _, c := range children {
		err = multierr.Append(err, c.Close())
	}
	k.admin.Close()
	return err
}

func (k *Kafka) adopt(c io.Closer) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}
	k.children = append(k.children, c)
	return nil
}

type kafkaConsumer struct {
	client *kgo.Client
	max    int
	once   sync.Once
}

func (c *kafkaConsumer) Poll(ctx context.Context) ([]*Record, error) {
	fetches := c.client.PollRecords(ctx, c.max)
	if fetches.IsClientClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, fe := range fetches.Errors() {
		return nil, fmt.Errorf("transport: fetch %s/%d: %w", fe.Topic, fe.Partition, fe.Err)
	}

	recs := make([]*Record, 0, fetches.NumRecords())
	fetches.EachRecord(func(kr *kgo.Record) {
		recs = append(recs, fromKgo(kr))
	})
	return recs, nil
}

func (c *kafkaConsumer) Mark(recs ...*Record) {
	krs := make([]*kgo.Record, 0, len(recs))
	for _, r := range recs {
		if kr, ok := r.raw.(*kgo.Record); ok {
			krs = append(krs, kr)
		}
	}
	if len(krs) > 0 {
		c.client.MarkCommitRecords(krs...)
	}
}

func (c *kafkaConsumer) Close() error {
	c.once.Do(c.client.Close)
	return nil
}

type kafkaProducer struct {
	client *kgo.Client
	once   sync.Once
}

func (p *kafkaProducer) Produce(ctx context.Context, rec *Record) error {
	if err := p.client.ProduceSync(ctx, toKgo(rec)).FirstErr(); err != nil {
		return fmt.Errorf("transport: produce to %s: %w", rec.Topic, err)
	}
	return nil
}

func (p *kafkaProducer) Close() error {
	p.once.Do(p.client.Close)
	return nil
}

func fromKgo(kr *kgo.Record) *Record {
	hs := make([]Header, len(kr.Headers))
	for i, h := range kr.Headers {
		hs[i] = Header{Key: h.Key, Value: h.Value}
	}
	return &Record{
		Topic:       kr.Topic,
		Partition:   kr.Partition,
		Offset:      kr.Offset,
		LeaderEpoch: kr.LeaderEpoch,
		Timestamp:   kr.Timestamp,
		Key:         kr.Key,
		Value:       kr.Value,
		Headers:     hs,
		raw:         kr,
	}
}

func toKgo(r *Record) *kgo.Record {
	hs := make([]kgo.RecordHeader, len(r.Headers))
	for i, h := range r.Headers {
		hs[i] = kgo.RecordHeader{Key: h.Key, Value: h.Value}
	}
	return &kgo.Record{
		Topic:     r.Topic,
		Key:       r.Key,
		Value:     r.Value,
		Headers:   hs,
		Timestamp: r.Timestamp,
	}
}
