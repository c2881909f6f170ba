package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/hub"
	"github.com/caps24escola/pixel-world/internal/protocol"
	"github.com/caps24escola/pixel-world/internal/repository"
	"github.com/caps24escola/pixel-world/internal/repository/mocks"
	"github.com/caps24escola/pixel-world/internal/service"
	"github.com/caps24escola/pixel-world/internal/surface"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSessionID = "k3v9q0x2m7ab"

func init() {
	gin.SetMode(gin.TestMode)
}

func startServer(t *testing.T) string {
	t.Helper()
	repo := new(mocks.SessionRepository)
	now := time.Now()
	repo.On("FindByID", mock.Anything, testSessionID).
		Return(&domain.Session{ID: testSessionID, CreatedAt: now, LastActive: now}, nil)
	repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	repo.On("Touch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := service.NewSessionService(repo, time.Hour, 30*time.Minute)
	h := hub.NewHub(domain.DefaultColor, svc)
	go h.Run()

	router := gin.New()
	router.GET("/ws/session/:sessionId/:role", NewWebSocketHandler(h, svc).HandleConnection)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		h.Stop()
		server.Close()
	})
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, base, sessionID string, role hub.Role) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(base+"/ws/session/"+sessionID+"/"+string(role), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

// readFrame returns the next frame as a generic JSON object.
func readFrame(t *testing.T, conn *websocket.Conn) (map[string]interface{}, []byte) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame, data
}

// readPanel skips panel frames until one of the given type arrives.
func readPanel(t *testing.T, conn *websocket.Conn, typ string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame, _ := readFrame(t, conn)
		if frame["type"] == typ {
			return frame
		}
	}
	t.Fatalf("no %q frame received", typ)
	return nil
}

// readSurface applies the next surface frame to board and returns its action.
func readSurface(t *testing.T, conn *websocket.Conn, board *surface.Board) string {
	t.Helper()
	frame, data := readFrame(t, conn)
	require.NoError(t, board.Receive(data))
	action, _ := frame["action"].(string)
	return action
}

func click(t *testing.T, conn *websocket.Conn, board *surface.Board, lat, lng float64) {
	t.Helper()
	payload, err := protocol.Encode(board.Click(lat, lng))
	require.NoError(t, err)
	send(t, conn, string(payload))
}

func TestWebSocket_PaintAndEraseScenario(t *testing.T) {
	base := startServer(t)
	board := surface.NewBoard()

	panel := dial(t, base, testSessionID, hub.RolePanel)
	state := readPanel(t, panel, "state")
	assert.Equal(t, string(domain.DefaultColor), state["currentColor"])
	assert.Equal(t, true, state["isDrawMode"])

	surf := dial(t, base, testSessionID, hub.RoleSurface)
	send(t, surf, `{"type":"ready"}`)
	assert.Equal(t, "setDrawMode", readSurface(t, surf, board))
	assert.True(t, board.DrawMode())

	click(t, surf, board, 48.8566, 2.3522)
	assert.Equal(t, "addPixel", readSurface(t, surf, board))
	readPanel(t, panel, "focus")
	key := domain.CellKey(48.8566, 2.3522)
	assert.Equal(t, string(domain.DefaultColor), board.Cells()[key])

	send(t, panel, `{"type":"keydown","key":"e","targetTag":"BODY"}`)
	note := readPanel(t, panel, "notification")
	assert.Equal(t, domain.NotifyEraser.Message, note["message"])

	click(t, surf, board, 48.8566, 2.3522)
	assert.Equal(t, "addPixel", readSurface(t, surf, board))
	assert.Empty(t, board.Cells())

	send(t, panel, `{"type":"clearAll"}`)
	assert.Equal(t, "clearPixels", readSurface(t, surf, board))
	note = readPanel(t, panel, "notification")
	assert.Equal(t, domain.NotifyCleared.Message, note["message"])
}

func TestWebSocket_ViewModeIgnoresClicks(t *testing.T) {
	base := startServer(t)
	board := surface.NewBoard()

	panel := dial(t, base, testSessionID, hub.RolePanel)
	readPanel(t, panel, "state")
	surf := dial(t, base, testSessionID, hub.RoleSurface)
	send(t, surf, `{"type":"ready"}`)
	require.Equal(t, "setDrawMode", readSurface(t, surf, board))

	send(t, panel, `{"type":"toggleMode"}`)
	assert.Equal(t, "setDrawMode", readSurface(t, surf, board))
	assert.False(t, board.DrawMode())
	note := readPanel(t, panel, "notification")
	assert.Equal(t, domain.NotifyMapMode.Message, note["message"])

	click(t, surf, board, 10, 20)

	require.NoError(t, surf.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := surf.ReadMessage()
	assert.Error(t, err, "a click in map mode must not produce a frame")
	assert.Empty(t, board.Cells())
}

func TestWebSocket_RejectsUnknownSessionAndRole(t *testing.T) {
	base := startServer(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "unknown session", path: "/ws/session/zzzzzzzzzzzz/panel"},
		{name: "malformed session", path: "/ws/session/nope/surface"},
		{name: "unknown role", path: "/ws/session/" + testSessionID + "/viewer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(base+tt.path, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}
