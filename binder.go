package streambind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/streambind/streambind/codec"
	"github.com/streambind/streambind/convert"
	"github.com/streambind/streambind/dlq"
	"github.com/streambind/streambind/internal/observability"
	"github.com/streambind/streambind/state"
	"github.com/streambind/streambind/transport"
)

// Binder hosts the configured bindings: it resolves codecs and converters at
// startup, runs the inbound consumer loops, routes deserialization failures
// per the process-wide error policy, and exposes outbound senders, the
// dead-letter forwarder and the queryable state registry.
type Binder struct {
	cfg            Config
	log            *slog.Logger
	transport      transport.Transport
	codecs         *codec.Registry
	converters     *convert.Registry
	promReg        prometheus.Registerer
	metrics        *observability.Metrics
	tracer         trace.Tracer
	clientID       string
	maxPollRecords int

	policy      ErrorPolicy
	bindings    map[string]Binding
	resolutions map[string]resolution
	dlqNames    map[string]string
	registry    *state.Registry
	producer    transport.Producer
	forwarder   *dlq.Forwarder

	mu       sync.Mutex
	handlers map[string]Handler
	running  bool
	closed   bool
	cancel   context.CancelFunc
	eg       *errgroup.Group
}

// New builds a binder from the configuration. Everything that can be wrong
// with the configuration is wrong here: unknown codecs or content types,
// unparseable policies, invalid bindings and missing groups all fail New,
// before a single record flows.
func New(cfg Config, opts ...Option) (*Binder, error) {
	b := &Binder{
		cfg:         cfg,
		log:         NullLogger(),
		codecs:      codec.NewRegistry(),
		converters:  convert.NewRegistry(),
		registry:    state.NewRegistry(),
		tracer:      observability.Tracer(),
		bindings:    make(map[string]Binding),
		resolutions: make(map[string]resolution),
		dlqNames:    make(map[string]string),
		handlers:    make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.promReg != nil {
		b.metrics = observability.NewMetrics(b.promReg)
	}

	policy, err := ParseErrorPolicy(cfg.ErrorPolicy)
	if err != nil {
		return nil, err
	}
	b.policy = policy

	var verr error
	hasInbound := false
	for _, raw := range cfg.Bindings {
		bind := raw.normalize(cfg)
		if err := bind.validate(); err != nil {
			verr = multierr.Append(verr, err)
			continue
		}
		if _, dup := b.bindings[bind.Name]; dup {
			verr = multierr.Append(verr, fmt.Errorf("binding %s: duplicate name", bind.Name))
			continue
		}

		res, err := resolve(bind, cfg, b.codecs, b.converters)
		if err != nil {
			verr = multierr.Append(verr, err)
			continue
		}

		b.bindings[bind.Name] = bind
		b.resolutions[bind.Name] = res
		if bind.Direction == DirectionInbound {
			hasInbound = true
			name := bind.DLQName
			if name == "" {
				name = dlq.DerivedName(bind.Destination, cfg.Group)
			}
			b.dlqNames[bind.Name] = name
		}
	}
	if hasInbound && cfg.Group == "" {
		verr = multierr.Append(verr, fmt.Errorf("%w: inbound bindings subscribe by group", ErrGroupRequired))
	}
	if b.policy == SendToDLQ && cfg.Group == "" {
		verr = multierr.Append(verr, fmt.Errorf("%w: derived dead-letter names include the group", ErrGroupRequired))
	}
	if verr != nil {
		return nil, verr
	}

	if b.transport == nil {
		if len(cfg.Brokers) == 0 {
			return nil, ErrTransportRequired
		}
		tr, err := transport.NewKafka(transport.KafkaConfig{
			Brokers:  cfg.Brokers,
			ClientID: b.clientID,
			Log:      b.log.WithGroup("transport"),
		})
		if err != nil {
			return nil, err
		}
		b.transport = tr
	}

	producer, err := b.transport.Producer()
	if err != nil {
		return nil, fmt.Errorf("streambind: producer: %w", err)
	}
	b.producer = producer
	b.forwarder = dlq.NewForwarder(producer, cfg.Group,
		dlq.WithLog(b.log.WithGroup("dlq")),
		dlq.WithMetrics(b.metrics),
	)

	return b, nil
}

// MustNew builds a binder, panicking on configuration errors. Prefer New for
// production code.
func MustNew(cfg Config, opts ...Option) *Binder {
	b, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Inbound attaches a handler to an inbound binding. Handlers attach before
// Run; every inbound binding must have one.
func (b *Binder) Inbound(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("streambind: nil handler for binding %q", name)
	}
	bind, ok := b.bindings[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	if bind.Direction != DirectionInbound {
		return fmt.Errorf("streambind: binding %q is not inbound", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBinderClosed
	}
	if b.running {
		return fmt.Errorf("streambind: binder already running, attach handlers before Run")
	}
	if _, dup := b.handlers[name]; dup {
		return fmt.Errorf("streambind: binding %q already has a handler", name)
	}
	b.handlers[name] = h
	return nil
}

// Outbound returns the sender for an outbound binding.
func (b *Binder) Outbound(name string) (*Outbound, error) {
	bind, ok := b.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBinding, name)
	}
	if bind.Direction != DirectionOutbound {
		return nil, fmt.Errorf("streambind: binding %q is not outbound", name)
	}
	return &Outbound{
		binding:  bind,
		res:      b.resolutions[name],
		producer: b.producer,
		log:      b.log,
		metrics:  b.metrics,
		tracer:   b.tracer,
	}, nil
}

// Stores returns the queryable state registry. External request handlers
// look stores up here while the topology keeps mutating them.
func (b *Binder) Stores() *state.Registry {
	return b.registry
}

// DeadLetters returns the dead-letter forwarder. It is an explicit
// capability for handlers that want per-record recovery for failures the
// binder does not route, such as processing errors after a successful
// decode.
func (b *Binder) DeadLetters() *dlq.Forwarder {
	return b.forwarder
}

// Run starts one consumer loop per inbound binding and concurrency slot and
// blocks until the context is canceled, Close is called, or a loop halts
// with an error. All loops share cancellation: under logAndFail one poisoned
// binding halts the whole instance.
func (b *Binder) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBinderClosed
	}
	if b.running {
		b.mu.Unlock()
		return errors.New("streambind: already running")
	}
	for name, bind := range b.bindings {
		if bind.Direction == DirectionInbound {
			if _, ok := b.handlers[name]; !ok {
				b.mu.Unlock()
				return fmt.Errorf("streambind: inbound binding %q has no handler", name)
			}
		}
	}
	runCtx, cancel := context.WithCancel(ctx)
	eg, egCtx := errgroup.WithContext(runCtx)
	b.running = true
	b.cancel = cancel
	b.eg = eg
	b.mu.Unlock()
	defer cancel()

	if b.policy == SendToDLQ {
		for name, bind := range b.bindings {
			if bind.Direction != DirectionInbound {
				continue
			}
			if err := b.transport.EnsureTopic(runCtx, b.dlqNames[name]); err != nil {
				return fmt.Errorf("binding %s: provision dead-letter destination: %w", name, err)
			}
		}
	}

	router := &errorRouter{
		policy:    b.policy,
		forwarder: b.forwarder,
		log:       b.log,
		metrics:   b.metrics,
	}

	for name, bind := range b.bindings {
		if bind.Direction != DirectionInbound {
			continue
		}
		for i := 0; i < bind.Concurrency; i++ {
			consumer, err := b.transport.Consumer(transport.ConsumerConfig{
				Topic:          bind.Destination,
				Group:          b.cfg.Group,
				StartOffset:    bind.StartOffset,
				MaxPollRecords: b.maxPollRecords,
			})
			if err != nil {
				cancel()
				_ = eg.Wait()
				return fmt.Errorf("binding %s: consumer: %w", name, err)
			}

			loop := &inboundLoop{
				binding:  bind,
				consumer: consumer,
				handler:  b.handlers[name],
				res:      b.resolutions[name],
				router:   router,
				dlqName:  b.dlqNames[name],
				log:      b.log.With("binding", name),
				metrics:  b.metrics,
				tracer:   b.tracer,
			}
			eg.Go(func() error {
				return loop.run(egCtx)
			})
		}
	}

	// Keeps Run blocked for outbound-only binders until shutdown.
	eg.Go(func() error {
		<-egCtx.Done()
		return nil
	})

	b.log.Info("binder running",
		"group", b.cfg.Group,
		"bindings", len(b.bindings),
		"policy", b.policy.String(),
	)

	err := eg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close shuts the binder down: the state registry closes first, so no
// caller can look up a store that is being torn down, then the consumer
// loops stop, then the transport closes.
func (b *Binder) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel := b.cancel
	eg := b.eg
	b.mu.Unlock()

	err := b.registry.Close()

	if cancel != nil {
		cancel()
	}
	if eg != nil {
		_ = eg.Wait()
	}

	return multierr.Append(err, b.transport.Close())
}
