package hub

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/paperbase/paperbase/internal/notif"
)

func testEvent(user string) notif.Event {
	return notif.Event{
		Name:   "ocr_document_task",
		State:  notif.StateStarted,
		Kwargs: notif.Payload{DocumentID: "d1", UserID: user, Lang: "deu"},
	}
}

func TestSendReachesGroupSubscribers(t *testing.T) {
	h := NewHub(zerolog.Nop())
	a := h.Subscribe("user-u1")
	b := h.Subscribe("user-u1")
	other := h.Subscribe("user-u2")

	ev := testEvent("u1")
	h.Send("user-u1", ev)

	require.Equal(t, ev, <-a.C)
	require.Equal(t, ev, <-b.C)
	require.Empty(t, other.C)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(zerolog.Nop())
	sub := h.Subscribe("user-u1")

	h.Unsubscribe(sub)
	_, ok := <-sub.C
	require.False(t, ok)
	require.Zero(t, h.count("user-u1"))

	// Repeated unsubscribe is a no-op.
	h.Unsubscribe(sub)
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	h := NewHub(zerolog.Nop())
	sub := h.Subscribe("user-u1")

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Send("user-u1", testEvent("u1"))
	}
	require.Len(t, sub.C, subscriberBuffer)
}

func TestSendToEmptyGroup(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.Send("user-nobody", testEvent("nobody"))
}

func TestForwarderRoutesByUser(t *testing.T) {
	relay := notif.NewMemoryRelay(notif.DefaultCapacity, zerolog.Nop())
	h := NewHub(zerolog.Nop())
	sub := h.Subscribe("user-u1")

	f := NewForwarder(relay, h, zerolog.Nop())
	stopped := make(chan error, 1)
	go func() { stopped <- f.Run(context.Background()) }()

	ctx := context.Background()
	require.NoError(t, relay.Push(ctx, testEvent("u1")))
	require.NoError(t, relay.Push(ctx, testEvent("")))
	require.NoError(t, relay.Push(ctx, testEvent("u2")))

	select {
	case ev := <-sub.C:
		require.Equal(t, "u1", ev.Kwargs.UserID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	require.NoError(t, relay.Close())
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop on close")
	}
}

func TestForwarderStopsOnContextCancel(t *testing.T) {
	relay := notif.NewMemoryRelay(notif.DefaultCapacity, zerolog.Nop())
	defer relay.Close()
	f := NewForwarder(relay, NewHub(zerolog.Nop()), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- f.Run(ctx) }()
	cancel()

	select {
	case err := <-stopped:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop on cancel")
	}
}

func TestWebSocketStream(t *testing.T) {
	h := NewHub(zerolog.Nop())
	srv := httptest.NewServer(NewHandler(h, zerolog.Nop()).Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/user-u1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.count("user-u1") == 1 },
		time.Second, 10*time.Millisecond)

	want := testEvent("u1")
	h.Send("user-u1", want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got notif.Event
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, want, got)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.count("user-u1") == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewHandler(NewHub(zerolog.Nop()), zerolog.Nop()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok"}`, string(b))
}
