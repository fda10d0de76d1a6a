package integrationtests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/hub"
	"auction-engine/services/auction/helpers"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) hub.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env hub.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func readWSUntil(t *testing.T, conn *websocket.Conn, event string) hub.Envelope {
	t.Helper()
	for i := 0; i < 10; i++ {
		env := readWS(t, conn)
		if env.Event == event {
			return env
		}
	}
	t.Fatalf("event %q never arrived", event)
	return hub.Envelope{}
}

func TestWebSocketRequiresToken(t *testing.T) {
	env := SetupTestEnv(t)
	server := httptest.NewServer(env.Router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketBidFlow(t *testing.T) {
	env := SetupTestEnv(t)
	server := httptest.NewServer(env.Router)
	defer server.Close()

	// create and start a lot over the REST API
	created, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/api/admin/lots", AdminToken, helpers.CreateLotRequest{
		Title: "wired", StartingPrice: 100, MinStep: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	lotID := int64(created["id"].(float64))

	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/api/admin/lots/"+itoa(created["id"].(float64))+"/start", AdminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	bidder := dialWS(t, server, UserToken)
	watcher := dialWS(t, server, VIPToken)

	// both parties receive the bootstrap snapshot first
	boot := readWS(t, bidder)
	require.Equal(t, auction.EventBootstrap, boot.Event)
	var snapshot auction.BootstrapPayload
	require.NoError(t, json.Unmarshal(boot.Data, &snapshot))
	require.Len(t, snapshot.Lots, 1)
	require.Equal(t, "alice", snapshot.User.Username)

	require.Equal(t, auction.EventBootstrap, readWS(t, watcher).Event)

	// place a bid over the socket
	bidMsg, err := json.Marshal(map[string]any{"lotId": lotID, "amount": 110})
	require.NoError(t, err)
	frame, err := json.Marshal(hub.Envelope{Event: "placeBid", Data: bidMsg})
	require.NoError(t, err)
	require.NoError(t, bidder.WriteMessage(websocket.TextMessage, frame))

	// the bidder gets its acceptance and a fresh balance
	accepted := readWSUntil(t, bidder, auction.EventBidAccepted)
	var acceptedPayload auction.BidAcceptedPayload
	require.NoError(t, json.Unmarshal(accepted.Data, &acceptedPayload))
	require.NotZero(t, acceptedPayload.BidID)

	userUpdate := readWSUntil(t, bidder, auction.EventUserUpdated)
	var userView auction.UserView
	require.NoError(t, json.Unmarshal(userUpdate.Data, &userView))
	require.Equal(t, 9890.0, userView.Balance)

	// every other eligible party sees the lot move
	lotUpdate := readWSUntil(t, watcher, auction.EventLotUpdated)
	var lotView auction.LotView
	require.NoError(t, json.Unmarshal(lotUpdate.Data, &lotView))
	require.Equal(t, lotID, lotView.ID)
	require.Equal(t, 110.0, lotView.CurrentPrice)
	require.Equal(t, "alice", *lotView.CurrentBidder)
}

func TestWebSocketRejectionFlow(t *testing.T) {
	env := SetupTestEnv(t)
	server := httptest.NewServer(env.Router)
	defer server.Close()

	created, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/api/admin/lots", AdminToken, helpers.CreateLotRequest{
		Title: "strict", StartingPrice: 100, MinStep: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	lotID := int64(created["id"].(float64))
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/api/admin/lots/"+itoa(created["id"].(float64))+"/start", AdminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	conn := dialWS(t, server, UserToken)
	require.Equal(t, auction.EventBootstrap, readWS(t, conn).Event)

	bidMsg, err := json.Marshal(map[string]any{"lotId": lotID, "amount": 105})
	require.NoError(t, err)
	frame, err := json.Marshal(hub.Envelope{Event: "placeBid", Data: bidMsg})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	rejected := readWSUntil(t, conn, auction.EventBidRejected)
	var payload auction.RejectedPayload
	require.NoError(t, json.Unmarshal(rejected.Data, &payload))
	require.Equal(t, "minimum bid is 110.00", payload.Reason)
}
