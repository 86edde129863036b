package handlers

import (
	"errorwatch/service"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	// Origins are already open through CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamErrors pushes every newly stored error to a websocket client as JSON
func StreamErrors(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		return
	}
	defer conn.Close()

	hub := service.GlobalServices.Hub
	id, records := hub.Subscribe()
	defer hub.Unsubscribe(id)

	// The client never sends anything meaningful; reading only detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case rec, ok := <-records:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(rec); err != nil {
				log.Printf("Stream subscriber %s write failed: %v", id, err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
