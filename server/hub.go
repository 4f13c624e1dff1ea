package server

import (
	"encoding/json"
	"sync"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/entity"
)

// 广播通道缓冲长度，写满时丢弃消息而不是阻塞步进线程
const broadcastBuffer = 256

// Hub websocket连接池
// 功能：维护活跃的websocket客户端集合并向其广播仿真消息
// 说明：客户端集合由Run协程独占修改，广播经缓冲通道转发
type Hub struct {
	// 活跃客户端集合
	clients map[*Client]bool
	// 广播消息通道
	broadcast chan []byte
	// 客户端注册通道
	register chan *Client
	// 客户端注销通道
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub 创建websocket连接池
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 运行连接池主循环
// 功能：处理客户端注册、注销与消息广播
// 说明：需要在独立协程中运行
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Debugf("websocket client registered: %s", client.conn.RemoteAddr())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Debugf("websocket client unregistered: %s", client.conn.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 客户端发送缓冲已满，视为失联并移除
					log.Warnf("websocket client %s send buffer full, removing", client.conn.RemoteAddr())
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount 当前连接的客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastSnapshot 向所有客户端广播步快照
func (h *Hub) BroadcastSnapshot(snap entity.StepSnapshot) {
	h.broadcastJSON("step", snap)
}

// BroadcastAnomalies 向所有客户端广播异常记录，为空时不发送
func (h *Hub) BroadcastAnomalies(anomalies []entity.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	h.broadcastJSON("anomalies", anomalies)
}

func (h *Hub) broadcastJSON(kind string, payload any) {
	b, err := json.Marshal(map[string]any{"type": kind, "payload": payload})
	if err != nil {
		log.Errorf("failed to marshal %s broadcast: %v", kind, err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		log.Warnf("websocket broadcast channel full, dropping %s message", kind)
	}
}
