package controllers

import (
	"net/http"
	"time"

	"github.com/Ahmad-FikriA/ai-food-detection/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	RT *services.RealtimeHub
}

// constructor
func NewRealtimeController(rt *services.RealtimeHub) *RealtimeController {
	return &RealtimeController{RT: rt}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/scans/ws
func (rc *RealtimeController) ScansWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{Conn: conn}
	rc.RT.Register(cl)

	done := make(chan struct{})
	defer close(done)

	// keep connections alive through proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Ping(); err != nil {
					rc.RT.Unregister(cl)
					return
				}
			}
		}
	}()

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.RT.Unregister(cl)
			return
		}
	}
}
