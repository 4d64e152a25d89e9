package debug_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kasuganosora/enemyai/api/debug"
	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/notify"
	"github.com/kasuganosora/enemyai/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsDisabled(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/events").Code)
}

func TestEventsStreamFiltersByAgentAndType(t *testing.T) {
	f := newFixture(t, false)
	_, ps := testutil.SetupTestCache(t)
	h := debug.NewHandler(f.room, nil, nil, nil).WithEvents(ps, "")
	srv := httptest.NewServer(debug.NewRouter(h, 0, 0, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events?agent=a1&types=state_changed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"subscribed"}`, string(hello))

	pub := notify.NewPublisher(ps, nil)
	pub.Notify(agent.EventStateChanged{Header: agent.Header{AgentID: "a2"}, From: agent.Patrolling, To: agent.Chasing})
	pub.Notify(agent.EventDamaged{Header: agent.Header{AgentID: "a1"}, Amount: 5})
	pub.Notify(agent.EventStateChanged{Header: agent.Header{AgentID: "a1"}, From: agent.Patrolling, To: agent.Chasing})

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := notify.Decode(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "a1", env.AgentID)
	assert.Equal(t, "state_changed", env.Type)
}
