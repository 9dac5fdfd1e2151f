package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/san-kum/clothlab/internal/automation"
	"github.com/san-kum/clothlab/internal/dynamo"
	"github.com/san-kum/clothlab/internal/grid"
	"github.com/san-kum/clothlab/internal/metrics"
	"github.com/san-kum/clothlab/internal/sim"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	readLimit  = 1 << 16
	sendBuffer = 8
)

type Config struct {
	Dt float32
	// FrameRate is the number of steps taken and broadcast per second.
	FrameRate int
	// Names and Backends label the solvers in the hello message.
	Names    []string
	Backends []string
}

// Server streams solver frames to websocket clients. A single loop
// goroutine started by Run owns the solvers and the client set; handlers
// reach it only through channels.
type Server struct {
	cfg      Config
	solvers  []dynamo.Solver
	pool     *sim.SnapshotPool
	upgrader websocket.Upgrader

	cmds       chan Command
	register   chan *client
	unregister chan *client
	done       chan struct{}

	clients map[*client]struct{}
	hello   []byte
	frame   int
	t       float64
	paused  bool
	stepMs  []float64
}

func New(solvers []dynamo.Solver, cfg Config) *Server {
	if !(cfg.Dt > 0) {
		cfg.Dt = 1.0 / 60
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	s := &Server{
		cfg:     cfg,
		solvers: solvers,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cmds:       make(chan Command),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		stepMs:     make([]float64, len(solvers)),
	}
	if len(solvers) > 0 {
		s.pool = sim.NewSnapshotPool(solvers[0].Rows() * solvers[0].Cols())
	}
	s.hello, _ = json.Marshal(s.helloMessage())
	return s
}

func (s *Server) helloMessage() Hello {
	h := Hello{
		Type:     TypeHello,
		Solvers:  s.cfg.Names,
		Backends: s.cfg.Backends,
		Dt:       s.cfg.Dt,
	}
	if len(s.solvers) == 0 {
		return h
	}
	h.Rows, h.Cols = s.solvers[0].Rows(), s.solvers[0].Cols()
	g, err := grid.New(h.Rows, h.Cols, 1)
	if err != nil {
		return h
	}
	for _, sp := range g.Springs() {
		if sp.Kind == grid.Structural {
			h.Springs = append(h.Springs, [2]int{sp.A, sp.B})
		}
	}
	for i := 0; i < g.Len(); i++ {
		if g.Pinned(i) {
			h.Pinned = append(h.Pinned, i)
		}
	}
	return h
}

// Run steps the solvers until ctx is done. Solvers on a thread-bound
// backend must be created on the goroutine that calls Run.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FrameRate))
	defer ticker.Stop()

	defer func() {
		for c := range s.clients {
			s.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-s.register:
			s.clients[c] = struct{}{}
			c.trySend(s.hello)
			dynamo.Logger().Info("stream client connected", "remote", c.conn.RemoteAddr().String(), "clients", len(s.clients))
		case c := <-s.unregister:
			if _, ok := s.clients[c]; ok {
				s.drop(c)
			}
		case cmd := <-s.cmds:
			if s.apply(cmd) {
				s.broadcast()
			}
		case <-ticker.C:
			if !s.paused {
				s.step()
				s.broadcast()
			}
		}
	}
}

func (s *Server) drop(c *client) {
	delete(s.clients, c)
	close(c.send)
	dynamo.Logger().Info("stream client disconnected", "clients", len(s.clients))
}

// apply runs one client command and reports whether the state changed.
func (s *Server) apply(cmd Command) bool {
	switch cmd.Action {
	case ActionPause:
		s.paused = true
	case ActionResume:
		s.paused = false
	case ActionStep:
		if !s.paused {
			return false
		}
		s.step()
	default:
		for _, solver := range s.solvers {
			cmd.Apply(solver)
		}
		if cmd.Action == automation.ActionReset {
			s.frame, s.t = 0, 0
		}
	}
	return true
}

func (s *Server) step() {
	for i, solver := range s.solvers {
		start := time.Now()
		solver.Step(s.cfg.Dt)
		s.stepMs[i] = float64(time.Since(start)) / float64(time.Millisecond)
	}
	s.frame++
	s.t += float64(s.cfg.Dt)
}

func (s *Server) broadcast() {
	if len(s.clients) == 0 || len(s.solvers) == 0 {
		return
	}

	msg := Frame{
		Type:      TypeFrame,
		Frame:     s.frame,
		Time:      s.t,
		Paused:    s.paused,
		Positions: make([][]mgl32.Vec3, len(s.solvers)),
		StepMs:    s.stepMs,
		Dragged:   -1,
		Params:    dynamo.GetParams(s.solvers[0]),
	}
	for i, solver := range s.solvers {
		msg.Positions[i] = s.pool.Snapshot(solver.Positions())
	}
	if len(s.solvers) > 1 {
		msg.RMSE = metrics.RMSE(msg.Positions[0], msg.Positions[1])
	}
	if idx, ok := s.solvers[0].DraggedIndex(); ok {
		msg.Dragging, msg.Dragged = true, idx
	}

	data, err := json.Marshal(msg)
	for _, buf := range msg.Positions {
		s.pool.Put(buf)
	}
	if err != nil {
		dynamo.Logger().Warn("frame encode failed", "frame", s.frame, "err", err)
		return
	}

	for c := range s.clients {
		if !c.trySend(data) {
			dynamo.Logger().Debug("stream client lagging, frame dropped", "frame", s.frame)
		}
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves or
// the loop stops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		dynamo.Logger().Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case s.register <- c:
	case <-s.done:
		conn.Close()
		return
	}

	go c.writePump()
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		select {
		case s.unregister <- c:
		case <-s.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reject(c, err)
			continue
		}
		if err := cmd.Validate(); err != nil {
			s.reject(c, err)
			continue
		}

		select {
		case s.cmds <- cmd:
		case <-s.done:
			return
		}
	}
}

// reject answers a bad command directly on the socket. The loop may already
// have closed the client's queue.
func (s *Server) reject(c *client, err error) {
	data, _ := json.Marshal(ErrorMessage{Type: TypeError, Error: err.Error()})
	if werr := c.write(websocket.TextMessage, data); werr != nil {
		dynamo.Logger().Debug("error reply failed", "err", werr)
	}
}
