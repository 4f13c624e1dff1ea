package server

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 单条消息写超时
	writeWait = 10 * time.Second
	// pong应答等待超时
	pongWait = 60 * time.Second
	// ping发送周期，必须小于pongWait
	pingPeriod = (pongWait * 9) / 10
	// 客户端上行消息大小上限
	maxMessageSize = 512
)

// Client websocket连接与连接池之间的中间层
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	// 出站消息缓冲通道
	send chan []byte
}

// readPump 持续读取连接的上行消息
// 说明：服务端只下发数据，上行内容被丢弃，
// 但必须持续读取以驱动pong等控制帧的处理
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debugf("websocket read error: %v", err)
			}
			return
		}
	}
}

// writePump 将连接池的消息写入连接，并定期发送ping保活
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 连接池已关闭发送通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			// 将积压的消息并入本次写出
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
