package internal

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler handles an upgraded connection. The connection is
// closed when the handler returns.
type WebSocketHandler func(c Context, conn *websocket.Conn) error

func defaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// Cross-origin checks belong to the deployment; override via
		// WithWebSocketUpgrader to enforce same-origin.
		CheckOrigin: func(*http.Request) bool { return true },
	}
}

// websocketHandler adapts a WebSocketHandler into a route handler.
// Upgrade failures flow to the error handler (the upgrader has already
// written the handshake response, so the handler only logs them). After a
// successful upgrade the connection is hijacked and nothing can be
// written to the response anymore, so handler errors are logged and the
// connection closed instead.
func websocketHandler(app *App, h WebSocketHandler) HandlerFunc {
	return func(c Context) error {
		conn, err := app.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return fmt.Errorf("websocket upgrade: %w", err)
		}
		defer conn.Close()

		if err := h(c, conn); err != nil {
			c.LogError("websocket handler failed",
				slog.Any("error", err),
				slog.String("route", c.Route().Name()),
			)
		}
		return nil
	}
}
