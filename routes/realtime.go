package routes

import (
	"log"
	"net/http"

	"rentline-server/utils"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is already constrained by the CORS layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RealtimeStream: GET /api/realtime — streams row-change signals for the
// authenticated user over a websocket. The payloads carry only table + id;
// the client re-runs its queries on every signal. The subscription is torn
// down when the socket closes.
func RealtimeStream(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	// the compression wrapper cannot hijack the connection
	ctx.CompressWriter(false)

	conn, err := upgrader.Upgrade(ctx.ResponseWriter().Naive(), ctx.Request(), nil)
	if err != nil {
		log.Printf("realtime: upgrade for user %d: %v", claims.ID, err)
		return
	}
	defer conn.Close()

	events, cancel := refresher.Subscribe(ctx.Request().Context(), claims.ID)
	defer cancel()

	// drain the client side; any read error means the socket is gone
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
