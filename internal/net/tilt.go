// Package net streams device orientation from a phone on the same network
// into the parallax controller.
//
// The phone opens the companion page served at "/", grants motion access,
// and pushes {beta, gamma, angle} samples over a websocket at "/tilt".
package net

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/motion"
)

//go:embed companion.html
var companionPage []byte

// DefaultStale is how long a sample stays usable without a newer one.
const DefaultStale = time.Second

type tiltMessage struct {
	Beta  *float64 `json:"beta"`
	Gamma *float64 `json:"gamma"`
	Angle int      `json:"angle"`
}

// TiltServer is a motion.TiltSource fed by websocket companions.
type TiltServer struct {
	Stale time.Duration
	Now   func() time.Time

	peers    *PeerManager
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	latest motion.TiltReading
	at     time.Time
	has    bool

	srv *http.Server
	ln  net.Listener
}

var _ motion.TiltSource = (*TiltServer)(nil)

// NewTiltServer creates a server that is not yet listening.
func NewTiltServer() *TiltServer {
	return &TiltServer{
		Stale: DefaultStale,
		Now:   time.Now,
		peers: NewPeerManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Companions are served from this host but may be reached via any LAN name.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler serves the companion page and the websocket endpoint.
func (s *TiltServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(companionPage)
	})
	mux.HandleFunc("/tilt", s.serveTilt)
	return mux
}

// Listen binds addr and serves in the background until ctx is cancelled
// or Close is called.
func (s *TiltServer) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("tilt server: %w", err)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	logging.Logger().Info("tilt server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Error("tilt server stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *TiltServer) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops serving and drops every companion.
func (s *TiltServer) Close() error {
	s.peers.CloseAll()
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

// Peers returns the number of connected companions.
func (s *TiltServer) Peers() int { return s.peers.Count() }

func (s *TiltServer) serveTilt(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("tilt upgrade failed", "err", err)
		return
	}
	peer := &Peer{Conn: conn}
	s.peers.Add(peer)
	defer s.peers.Remove(peer)

	for {
		var msg tiltMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger().Debug("tilt read ended", "err", err)
			}
			return
		}
		if msg.Beta == nil || msg.Gamma == nil {
			continue
		}
		s.store(motion.TiltReading{Beta: *msg.Beta, Gamma: *msg.Gamma, ScreenAngle: msg.Angle})
	}
}

func (s *TiltServer) store(r motion.TiltReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest, s.at, s.has = r, s.Now(), true
}

// RequestPermission waits for a companion to connect. Permission is the
// user opening the page and granting motion access on the phone, so it is
// granted once any companion has connected and denied if ctx ends first.
func (s *TiltServer) RequestPermission(ctx context.Context) bool {
	select {
	case <-s.peers.Connected():
		return true
	case <-ctx.Done():
		return false
	}
}

// Read returns the newest sample unless it is older than Stale.
func (s *TiltServer) Read() (motion.TiltReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has || (s.Stale > 0 && s.Now().Sub(s.at) > s.Stale) {
		return motion.TiltReading{}, false
	}
	return s.latest, true
}
