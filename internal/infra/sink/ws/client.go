// Package ws implements the realtime ComplianceMonitor sink over a
// WebSocket connection.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

const (
	sendBuffer     = 256
	writeDeadline  = 10 * time.Second
	reconnectDelay = 5 * time.Second
)

// envelope is the wire frame the ComplianceMonitor expects.
type envelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Client is a WebSocket sink. Messages are handed to a buffered send
// channel; a writer goroutine owns the connection, so Send* never block
// on network I/O. A full buffer means "not delivered this cycle".
type Client struct {
	url string

	connected atomic.Bool
	send      chan []byte

	handlerMu sync.Mutex
	onState   compliance.ConnectionHandler

	stop     chan struct{}
	stopOnce sync.Once
}

// NewClient builds a sink for the given ws:// or wss:// URL. Connect
// starts the connection lifecycle.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		send: make(chan []byte, sendBuffer),
		stop: make(chan struct{}),
	}
}

// SetConnectionHandler registers the single state callback. Must be
// called before Connect.
func (c *Client) SetConnectionHandler(h compliance.ConnectionHandler) {
	c.handlerMu.Lock()
	c.onState = h
	c.handlerMu.Unlock()
}

// Connect starts the background connection loop. The loop reconnects
// with a fixed delay until Close is called.
func (c *Client) Connect() {
	go c.loop()
}

// Close stops the connection loop.
func (c *Client) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Name implements compliance.Sink.
func (c *Client) Name() string { return "websocket" }

// Connected implements compliance.Sink.
func (c *Client) Connected() bool { return c.connected.Load() }

// SendResult implements compliance.Sink.
func (c *Client) SendResult(_ context.Context, r compliance.ComplianceResult) bool {
	return c.push("compliance_update", r)
}

// SendThaiAnalysis implements compliance.Sink.
func (c *Client) SendThaiAnalysis(_ context.Context, m *thai.ThaiMetadata) bool {
	return c.push("thai_analysis", m)
}

// SendReport implements compliance.Sink.
func (c *Client) SendReport(_ context.Context, rep *compliance.ETIAnalysisReport) bool {
	return c.push("analysis_report", rep)
}

func (c *Client) push(kind string, data any) bool {
	if !c.connected.Load() {
		return false
	}
	payload, err := json.Marshal(envelope{Type: kind, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		log.WithError(err).WithField("type", kind).Error("websocket sink marshal failed")
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		// writer is behind; drop here so the caller can retry next cycle
		return false
	}
}

func (c *Client) loop() {
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			log.WithError(err).WithField("url", c.url).Warn("websocket dial failed")
			select {
			case <-time.After(reconnectDelay):
				continue
			case <-c.stop:
				return
			}
		}

		c.setState(true)
		c.writePump(conn)
		c.setState(false)
		conn.Close()
	}
}

func (c *Client) writePump(conn *websocket.Conn) {
	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.WithError(err).Warn("websocket write failed")
				return
			}
		case <-c.stop:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) setState(connected bool) {
	c.connected.Store(connected)
	c.handlerMu.Lock()
	h := c.onState
	c.handlerMu.Unlock()
	if h != nil {
		h(c.Name(), connected)
	}
}
