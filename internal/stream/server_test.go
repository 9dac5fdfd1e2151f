package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/integrators"
)

func startServer(t *testing.T) *websocket.Conn {
	t.Helper()

	var solvers []dynamo.Solver
	for range 2 {
		s, err := integrators.NewSequential(5, 5, 0.1)
		if err != nil {
			t.Fatal(err)
		}
		solvers = append(solvers, s)
	}
	srv := New(solvers, Config{FrameRate: 200, Names: []string{"a", "b"}})

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn, v any) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		t.Fatalf("bad message %q: %v", data, err)
	}
	if v != nil {
		if err := json.Unmarshal(data, v); err != nil {
			t.Fatal(err)
		}
	}
	return head.Type
}

// nextFrame skips to the first frame satisfying ok.
func nextFrame(t *testing.T, conn *websocket.Conn, ok func(Frame) bool) Frame {
	t.Helper()
	for range 200 {
		var f Frame
		if readMessage(t, conn, &f) == TypeFrame && ok(f) {
			return f
		}
	}
	t.Fatal("no matching frame")
	return Frame{}
}

func send(t *testing.T, conn *websocket.Conn, cmd string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(cmd)); err != nil {
		t.Fatal(err)
	}
}

func TestHelloThenFrames(t *testing.T) {
	conn := startServer(t)

	var hello Hello
	if typ := readMessage(t, conn, &hello); typ != TypeHello {
		t.Fatalf("first message %q, want hello", typ)
	}
	if hello.Rows != 5 || hello.Cols != 5 {
		t.Errorf("grid = %dx%d", hello.Rows, hello.Cols)
	}
	if len(hello.Springs) != 2*5*4 {
		t.Errorf("structural springs = %d, want 40", len(hello.Springs))
	}
	if len(hello.Pinned) != 2 || hello.Pinned[0] != 0 || hello.Pinned[1] != 4 {
		t.Errorf("pinned = %v", hello.Pinned)
	}

	f := nextFrame(t, conn, func(Frame) bool { return true })
	if len(f.Positions) != 2 || len(f.Positions[0]) != 25 {
		t.Fatalf("positions shape %d", len(f.Positions))
	}
	if f.RMSE != 0 {
		t.Errorf("identical solvers disagree: %v", f.RMSE)
	}
	if f.Dragging || f.Dragged != -1 {
		t.Error("unexpected drag")
	}
}

func TestSetParam(t *testing.T) {
	conn := startServer(t)
	readMessage(t, conn, nil)

	send(t, conn, `{"action": "set", "param": "wind_strength", "value": 3}`)
	f := nextFrame(t, conn, func(f Frame) bool { return f.Params[dynamo.ParamWindStrength] == 3 })
	if f.RMSE != 0 {
		t.Errorf("edit applied unevenly, rmse %v", f.RMSE)
	}
}

func TestDragProtocol(t *testing.T) {
	conn := startServer(t)
	readMessage(t, conn, nil)

	send(t, conn, `{"action": "pause"}`)
	nextFrame(t, conn, func(f Frame) bool { return f.Paused })

	// Straight down through particle (2, 2) at the sheet centre.
	send(t, conn, `{"action": "begin_drag", "origin": [0, 5, 0], "dir": [0, -1, 0], "radius": 0.05}`)
	f := nextFrame(t, conn, func(f Frame) bool { return f.Dragging })
	if f.Dragged != 12 {
		t.Errorf("dragged %d, want 12", f.Dragged)
	}

	send(t, conn, `{"action": "drag", "target": [0, 1, 0]}`)
	send(t, conn, `{"action": "step"}`)
	f = nextFrame(t, conn, func(f Frame) bool { return f.Positions[0][12][1] == 1 })
	if f.Positions[1][12][1] != 1 {
		t.Error("second solver not dragged")
	}

	send(t, conn, `{"action": "end_drag"}`)
	nextFrame(t, conn, func(f Frame) bool { return !f.Dragging })
}

func TestRejectsBadCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
	}{
		{"unknown action", `{"action": "explode"}`},
		{"unknown param", `{"action": "set", "param": "mass", "value": 1}`},
		{"short vector", `{"action": "drag", "target": [1]}`},
		{"not json", `{"action":`},
		{"wrong type", `{"action": 7}`},
	}

	conn := startServer(t)
	readMessage(t, conn, nil)
	send(t, conn, `{"action": "pause"}`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.cmd)
			for range 50 {
				var e ErrorMessage
				if readMessage(t, conn, &e) == TypeError {
					if e.Error == "" {
						t.Error("empty error text")
					}
					return
				}
			}
			t.Fatal("no error reply")
		})
	}
}
