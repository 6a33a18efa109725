package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/club-manager/utils"
)

// Event types
const (
	EventTableUpdate    = "table_update"
	EventTableCreate    = "table_create"
	EventTableDelete    = "table_delete"
	EventBookingUpdate  = "booking_update"
	EventSessionFinish  = "session_finished"
	EventHistoryUpdate  = "history_update"
	EventSettingsUpdate = "settings_update"
)

const (
	// writeWait is how long one frame may take to reach a display.
	writeWait = 10 * time.Second
	// sendBuffer is how many messages a display may lag behind before it
	// is dropped.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub menampung semua floor display yang terhubung dan menyiarkan
// perubahan meja, antrian, dan setting. Setiap client punya goroutine
// writer sendiri sehingga Broadcast tidak pernah menunggu jaringan.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// RegisterClient -> menambahkan connection ke set dengan role dan
// menjalankan writer-nya
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	h.removeLocked(conn)
	h.mutex.Unlock()
	conn.Close()
}

// removeLocked deletes the client and closes its queue; the writer then
// exits. Caller holds h.mutex.
func (h *Hub) removeLocked(conn *websocket.Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues an event for every client. A client whose queue is
// full is dropped.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", event, len(h.clients))
	for conn, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.Warnf("Dropping %s client: send queue full", c.role)
			h.removeLocked(conn)
			conn.Close()
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Warnf("Dropping %s client: %v", c.role, err)
			h.mutex.Lock()
			h.removeLocked(c.conn)
			h.mutex.Unlock()
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
