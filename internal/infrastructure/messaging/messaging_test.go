package messaging

import (
	"testing"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/pkg/logging"
	"github.com/go-push-inbox/internal/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_OpenedWithoutListenerBecomesInitial(t *testing.T) {
	h := NewHub()
	msg := domain.RemoteMessage{MessageID: "m1"}

	assert.Equal(t, 0, h.Deliver(domain.DeliveryOpened, msg))

	got, ok := h.TakeInitial()
	require.True(t, ok)
	assert.Equal(t, "m1", got.MessageID)

	_, ok = h.TakeInitial()
	assert.False(t, ok, "initial notification is consumed once")
}

func TestHub_OpenedWithListenerIsPublished(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe(domain.DeliveryOpened)
	defer unsub()

	assert.Equal(t, 1, h.Deliver(domain.DeliveryOpened, domain.RemoteMessage{MessageID: "m2"}))
	assert.Equal(t, "m2", (<-ch).MessageID)
	_, ok := h.TakeInitial()
	assert.False(t, ok)
}

func TestHub_ForegroundWithoutListenerIsDropped(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Deliver(domain.DeliveryForeground, domain.RemoteMessage{MessageID: "m3"}))
	_, ok := h.TakeInitial()
	assert.False(t, ok)
}

func TestDecodeEnvelope(t *testing.T) {
	req, err := DecodeEnvelope([]byte(`{"kind":"background","message":{"messageId":"x","notification":{"title":"T","body":"B"},"data":{"k":"v"}}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryBackground, req.Kind)
	assert.Equal(t, "T", req.Message.Notification.Title)
	assert.Equal(t, "v", req.Message.Data["k"])

	_, err = DecodeEnvelope([]byte(`{"kind":"nope"}`))
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestRedisBridge_HandlePayloadDelivers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe(domain.DeliveryForeground)
	defer unsub()

	b := &RedisBridge{hub: h, log: logging.Discard()}
	b.handlePayload(`{"kind":"foreground","message":{"messageId":"r1"}}`)
	b.handlePayload(`garbage`)

	assert.Equal(t, "r1", (<-ch).MessageID)
	assert.Len(t, ch, 0)
}

func TestHub_OpenedAfterLastListenerLeftBecomesInitial(t *testing.T) {
	h := NewHub()
	_, unsub := h.Subscribe(domain.DeliveryOpened)
	unsub()

	assert.Equal(t, 0, h.Deliver(domain.DeliveryOpened, domain.RemoteMessage{MessageID: "late"}))
	got, ok := h.TakeInitial()
	require.True(t, ok)
	assert.Equal(t, "late", got.MessageID)
}

func TestHub_OpenedNoListenerReceivedIsKept(t *testing.T) {
	h := NewHub()
	_, unsub := h.Subscribe(domain.DeliveryOpened)
	defer unsub()

	for i := 0; i < pubsub.DefaultBuffer; i++ {
		require.Equal(t, 1, h.Deliver(domain.DeliveryOpened, domain.RemoteMessage{MessageID: "fill"}))
	}
	_, ok := h.TakeInitial()
	require.False(t, ok)

	assert.Equal(t, 0, h.Deliver(domain.DeliveryOpened, domain.RemoteMessage{MessageID: "overflow"}))
	got, ok := h.TakeInitial()
	require.True(t, ok)
	assert.Equal(t, "overflow", got.MessageID)
}
