package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Manager tracks connected clients per user and pushes messages to them.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	done           chan struct{}
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64
	logger         zerolog.Logger
}

type Options struct {
	MaxConnPerUser int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

func NewManager(opts Options, logger zerolog.Logger) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		done:           make(chan struct{}),
		maxConnPerUser: opts.MaxConnPerUser,
		writeWait:      opts.WriteWait,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PingPeriod,
		maxMessageSize: opts.MaxMessageSize,
		logger:         logger.With().Str("component", "websocket").Logger(),
	}
}

// Run processes registrations until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	if m.maxConnPerUser > 0 && len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		m.logger.Warn().Str("user_id", client.UserID).Msg("max connections reached")
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	m.logger.Debug().Str("client_id", client.ID).Str("user_id", client.UserID).Msg("client registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.userIndex[client.UserID], client.ID)

		if len(m.userIndex[client.UserID]) == 0 {
			delete(m.userIndex, client.UserID)
		}

		close(client.Send)
		m.logger.Debug().Str("client_id", client.ID).Msg("client unregistered")
	}
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for id, client := range m.clients {
		close(client.Send)
		delete(m.clients, id)
	}
	m.userIndex = make(map[string]map[string]bool)
}

// unregister hands client to Run, or drops it when Run has already stopped.
func (m *Manager) unregister(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

// BroadcastToUser queues message on every connection of userID. Clients whose
// buffer is full are disconnected.
func (m *Manager) BroadcastToUser(userID string, message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.clientsMutex.RLock()
	var slow []*Client
	for clientID := range m.userIndex[userID] {
		client := m.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			slow = append(slow, client)
		}
	}
	m.clientsMutex.RUnlock()

	m.dropSlow(slow)
	return nil
}

// Broadcast queues message on every connection.
func (m *Manager) Broadcast(message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.clientsMutex.RLock()
	var slow []*Client
	for _, client := range m.clients {
		select {
		case client.Send <- messageBytes:
		default:
			slow = append(slow, client)
		}
	}
	m.clientsMutex.RUnlock()

	m.dropSlow(slow)
	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		m.logger.Warn().Str("client_id", clientID).Msg("client send buffer full")
	}

	return nil
}

func (m *Manager) dropSlow(slow []*Client) {
	for _, client := range slow {
		m.logger.Warn().Str("client_id", client.ID).Msg("client send buffer full, closing connection")
		go m.unregister(client)
	}
}

func (m *Manager) GetUserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.userIndex[userID]; exists {
		return len(clients)
	}
	return 0
}
