package net

import (
	"sync"

	"github.com/gorilla/websocket"

	"ParallaxSketch/internal/logging"
)

// Peer is one connected tilt companion.
type Peer struct {
	Conn *websocket.Conn
}

// PeerManager tracks connected companions.
type PeerManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex

	first     chan struct{}
	firstOnce sync.Once
}

// NewPeerManager creates a new manager.
func NewPeerManager() *PeerManager {
	return &PeerManager{
		peers: make(map[string]*Peer),
		first: make(chan struct{}),
	}
}

// Add registers a newly connected companion.
func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	addr := peer.Conn.RemoteAddr().String()
	pm.peers[addr] = peer
	pm.firstOnce.Do(func() { close(pm.first) })
	logging.Logger().Info("tilt companion connected", "addr", addr)
}

// Remove forgets a companion and closes its connection.
func (pm *PeerManager) Remove(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	addr := peer.Conn.RemoteAddr().String()
	if _, ok := pm.peers[addr]; !ok {
		return
	}
	delete(pm.peers, addr)
	_ = peer.Conn.Close()
	logging.Logger().Info("tilt companion disconnected", "addr", addr)
}

// Count returns the number of connected companions.
func (pm *PeerManager) Count() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Connected is closed once the first companion has connected.
func (pm *PeerManager) Connected() <-chan struct{} { return pm.first }

// CloseAll disconnects every companion.
func (pm *PeerManager) CloseAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for addr, p := range pm.peers {
		_ = p.Conn.Close()
		delete(pm.peers, addr)
	}
}
