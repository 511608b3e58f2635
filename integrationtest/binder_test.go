package integrationtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/streambind/streambind"
	"github.com/streambind/streambind/dlq"
)

const redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v24.3.6"

func startRedpanda(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	container, err := redpanda.Run(ctx, redpandaImage)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	return []string{broker}
}

func createTopicsT(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = kadm.NewClient(client).CreateTopics(ctx, 3, 1, nil, topics...)
	require.NoError(t, err)
}

func produceT(t *testing.T, brokers []string, records ...*kgo.Record) {
	t.Helper()
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, client.ProduceSync(ctx, records...).FirstErr())
}

// consumeT reads records from the beginning of a topic until n arrive or the
// timeout expires.
func consumeT(t *testing.T, brokers []string, topic string, n int) []*kgo.Record {
	t.Helper()
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out []*kgo.Record
	for len(out) < n {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}
		fetches.EachRecord(func(r *kgo.Record) {
			out = append(out, r)
		})
	}
	return out
}

func headerT(t *testing.T, rec *kgo.Record, key string) string {
	t.Helper()
	for _, h := range rec.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	t.Fatalf("record has no header %s", key)
	return ""
}

func TestBinderRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	brokers := startRedpanda(t)

	input := fmt.Sprintf("words-%d", time.Now().UnixNano())
	output := fmt.Sprintf("counts-%d", time.Now().UnixNano())
	group := fmt.Sprintf("wordcount-%d", time.Now().UnixNano())
	createTopicsT(t, brokers, input, output)

	produceT(t, brokers,
		&kgo.Record{Topic: input, Key: []byte("k1"), Value: []byte(`"hello"`)},
		&kgo.Record{Topic: input, Key: []byte("k2"), Value: []byte(`"world"`)},
	)

	cfg := streambind.Config{
		Group:   group,
		Brokers: brokers,
		Bindings: []streambind.Binding{
			{Name: "words-in", Direction: streambind.DirectionInbound, Destination: input, StartOffset: "earliest"},
			{Name: "counts-out", Direction: streambind.DirectionOutbound, Destination: output},
		},
	}

	binder, err := streambind.New(cfg)
	require.NoError(t, err)
	defer binder.Close()

	out, err := binder.Outbound("counts-out")
	require.NoError(t, err)

	// Echo every word back out with a count of one.
	err = binder.Inbound("words-in", streambind.Typed(func(ctx context.Context, key []byte, word string) error {
		return out.Send(ctx, key, map[string]any{"word": word, "count": 1})
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- binder.Run(ctx)
	}()

	got := consumeT(t, brokers, output, 2)
	require.Len(t, got, 2)

	values := map[string]string{}
	for _, rec := range got {
		values[string(rec.Key)] = string(rec.Value)
	}
	assert.JSONEq(t, `{"word":"hello","count":1}`, values["k1"])
	assert.JSONEq(t, `{"word":"world","count":1}`, values["k2"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "binder should shut down cleanly")
	case <-time.After(15 * time.Second):
		t.Fatal("timeout waiting for binder to shut down")
	}
}

func TestBinderDeadLetterRouting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	brokers := startRedpanda(t)

	input := fmt.Sprintf("words-%d", time.Now().UnixNano())
	group := fmt.Sprintf("wordcount-%d", time.Now().UnixNano())
	createTopicsT(t, brokers, input)

	malformed := []byte(`{"oops`)
	produceT(t, brokers,
		&kgo.Record{Topic: input, Key: []byte("bad"), Value: malformed},
		&kgo.Record{Topic: input, Key: []byte("good"), Value: []byte(`"hello"`)},
	)

	cfg := streambind.Config{
		Group:       group,
		Brokers:     brokers,
		ErrorPolicy: "sendToDlq",
		Bindings: []streambind.Binding{
			{Name: "words-in", Direction: streambind.DirectionInbound, Destination: input, StartOffset: "earliest"},
		},
	}

	reg := prometheus.NewRegistry()
	binder, err := streambind.New(cfg, streambind.WithMetrics(reg))
	require.NoError(t, err)
	defer binder.Close()

	handled := make(chan streambind.Message, 4)
	err = binder.Inbound("words-in", streambind.HandlerFunc(func(_ context.Context, msg streambind.Message) error {
		handled <- msg
		return nil
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- binder.Run(ctx)
	}()

	// The well-formed record still gets through.
	select {
	case msg := <-handled:
		assert.Equal(t, "hello", msg.Value)
	case <-time.After(30 * time.Second):
		t.Fatal("timeout waiting for the well-formed record")
	}

	// The malformed one lands on the derived dead-letter topic, raw bytes
	// plus provenance headers. The binder provisioned the topic at startup.
	dlqTopic := dlq.DerivedName(input, group)
	deadLetters := consumeT(t, brokers, dlqTopic, 1)
	require.Len(t, deadLetters, 1)

	dead := deadLetters[0]
	assert.Equal(t, []byte("bad"), dead.Key)
	assert.Equal(t, malformed, dead.Value)
	assert.Equal(t, input, headerT(t, dead, dlq.HeaderOriginalTopic))
	assert.Equal(t, "0", headerT(t, dead, dlq.HeaderOriginalOffset))
	assert.NotEmpty(t, headerT(t, dead, dlq.HeaderError))
	assert.Len(t, headerT(t, dead, dlq.HeaderFailureID), 26)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "binder should shut down cleanly")
	case <-time.After(15 * time.Second):
		t.Fatal("timeout waiting for binder to shut down")
	}

	count, err := testutil.GatherAndCount(reg, "streambind_dlq_publishes_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
