package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/pkg/notification"
)

func testSession(className, section string) *models.ClassSession {
	return &models.ClassSession{
		ID:          7,
		Subject:     "Mathematics",
		ClassName:   className,
		Section:     section,
		SessionDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:30",
		Status:      models.SessionScheduled,
	}
}

func registerTestClient(t *testing.T, hub *Hub, cohort string) *Client {
	t.Helper()
	client := &Client{hub: hub, send: make(chan []byte, 8), id: "test-" + cohort, cohort: cohort}
	hub.register <- client
	return client
}

func receive(t *testing.T, client *Client) *SessionEventMessage {
	t.Helper()
	select {
	case payload := <-client.send:
		var msg SessionEventMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func expectSilence(t *testing.T, client *Client) {
	t.Helper()
	select {
	case payload := <-client.send:
		t.Fatalf("unexpected message: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastsToMatchingCohort(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	subscribed := registerTestClient(t, hub, "Grade 10/A")
	other := registerTestClient(t, hub, "Grade 11/B")
	all := registerTestClient(t, hub, "")

	hub.SessionEvent(testSession("Grade 10", "A"), notification.EventCreated)

	msg := receive(t, subscribed)
	if msg.Event != "created" || msg.Session.ID != 7 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}

	// An empty cohort subscribes to everything.
	if msg := receive(t, all); msg.Session.ClassName != "Grade 10" {
		t.Fatalf("wildcard client got %+v", msg)
	}

	expectSilence(t, other)
}

func TestHubCohortKeyWithoutSection(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	client := registerTestClient(t, hub, "Grade 10")

	hub.SessionEvent(testSession("Grade 10", ""), notification.EventRescheduled)

	if msg := receive(t, client); msg.Event != "rescheduled" {
		t.Fatalf("event = %s, want rescheduled", msg.Event)
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	client := registerTestClient(t, hub, "")
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected the send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Broadcasts after unregistering must not panic.
	hub.SessionEvent(testSession("Grade 10", "A"), notification.EventCancelled)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := registerTestClient(t, hub, "")
	hub.Close()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected the send channel to be closed on shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}
