package channel

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err  error
	hang bool
}

func (t *fakeToken) Wait() bool                     { return !t.hang }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.hang }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.hang {
		close(ch)
	}
	return ch
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

// fakeClient loops publishes back to its own subscriptions.
type fakeClient struct {
	mqtt.Client

	mu         sync.Mutex
	handlers   map[string]mqtt.MessageHandler
	published  map[string][]byte
	retained   map[string]bool
	subscribes int
	publishErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		handlers:  make(map[string]mqtt.MessageHandler),
		published: make(map[string][]byte),
		retained:  make(map[string]bool),
	}
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	if f.publishErr != nil {
		f.mu.Unlock()
		return &fakeToken{err: f.publishErr}
	}
	data := payload.([]byte)
	f.published[topic] = data
	f.retained[topic] = retained
	h := f.handlers[topic]
	f.mu.Unlock()
	if h != nil {
		h(f, fakeMessage{topic: topic, payload: data})
	}
	return &fakeToken{}
}

func (f *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	f.handlers[topic] = callback
	return &fakeToken{}
}

func (f *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range topics {
		delete(f.handlers, t)
	}
	return &fakeToken{}
}

func (f *fakeClient) Disconnect(uint) {}

func (f *fakeClient) handlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func testMQTTConfig() MQTTConfig {
	return MQTTConfig{
		BrokerURL:      "tcp://localhost:1883",
		ClientID:       "test",
		TopicPrefix:    "foodia",
		ConnectTimeout: time.Second,
		PublishTimeout: time.Second,
	}
}

func TestMQTTChannel_SharedBrokerSubscription(t *testing.T) {
	client := newFakeClient()
	ch := newMQTTChannel(client, testMQTTConfig())
	defer ch.Close()

	subject := OwnerSubject("tx-9")
	var a, b recorder
	unsubA, err := ch.Subscribe(subject, a.handle)
	require.NoError(t, err)
	unsubB, err := ch.Subscribe(subject, b.handle)
	require.NoError(t, err)
	assert.Equal(t, 1, client.subscribes)

	want := domain.Coordinate{Lat: -6.2, Lng: 106.8, Timestamp: 1700000000000}
	require.NoError(t, ch.Publish(context.Background(), subject, want))
	assert.True(t, client.retained["foodia/"+subject])

	for _, r := range []*recorder{&a, &b} {
		require.Eventually(t, func() bool {
			got, ok := r.last()
			return ok && got == want
		}, time.Second, 5*time.Millisecond)
	}

	unsubA()
	assert.Equal(t, 1, client.handlerCount())
	unsubB()
	assert.Equal(t, 0, client.handlerCount())
}

func TestMQTTChannel_TopicJoinsPrefixAsLevel(t *testing.T) {
	for prefix, want := range map[string]string{
		"foodia":  "foodia/handoff/tx-1/owner",
		"foodia/": "foodia/handoff/tx-1/owner",
		"a/b//":   "a/b/handoff/tx-1/owner",
		"":        "handoff/tx-1/owner",
	} {
		cfg := testMQTTConfig()
		cfg.TopicPrefix = prefix
		ch := newMQTTChannel(newFakeClient(), cfg)
		assert.Equal(t, want, ch.topic(OwnerSubject("tx-1")), prefix)
	}
}

func TestMQTTChannel_ForgetClearsRetained(t *testing.T) {
	client := newFakeClient()
	ch := newMQTTChannel(client, testMQTTConfig())
	defer ch.Close()

	subject := OwnerSubject("tx-2")
	var r recorder
	unsub, err := ch.Subscribe(subject, r.handle)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, ch.Publish(context.Background(), subject, domain.Coordinate{Lat: 1, Lng: 2}))
	require.Eventually(t, func() bool { return len(r.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, ch.Forget(context.Background(), subject))
	client.mu.Lock()
	assert.Empty(t, client.published["foodia/"+subject])
	assert.True(t, client.retained["foodia/"+subject])
	client.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, r.snapshot(), 1)
}

func TestMQTTChannel_MalformedPayloadDropped(t *testing.T) {
	client := newFakeClient()
	ch := newMQTTChannel(client, testMQTTConfig())
	defer ch.Close()

	var r recorder
	unsub, err := ch.Subscribe("handoff/x/owner", r.handle)
	require.NoError(t, err)
	defer unsub()

	h := client.handlers["foodia/handoff/x/owner"]
	require.NotNil(t, h)
	h(client, fakeMessage{topic: "foodia/handoff/x/owner", payload: []byte(`{"lat":"north"}`)})
	h(client, fakeMessage{topic: "foodia/handoff/x/owner", payload: []byte(`{"lat":95,"lng":0}`)})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, r.snapshot())
}

func TestMQTTChannel_PublishErrorsAreTransient(t *testing.T) {
	client := newFakeClient()
	client.publishErr = errors.New("broken pipe")
	ch := newMQTTChannel(client, testMQTTConfig())
	defer ch.Close()

	err := ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 1, Lng: 1})
	assert.ErrorIs(t, err, domain.ErrTransientIO)

	err = ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 1, Lng: 999})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
