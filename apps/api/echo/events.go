package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const streamInitialState = "initial_state"

func (api *paymentApi) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || api.conf.Debug || origin == api.conf.FrontendBaseURL
		},
	}
}

// events streams every payment flow transition, starting with the current state.
func (api *paymentApi) events(ctx echo.Context) error {
	upgrader := api.upgrader()
	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return nil // the upgrader already replied
	}

	initial, err := json.Marshal(StreamMessage{Type: streamInitialState, Flow: api.ctrl.State()})
	if err == nil {
		err = conn.WriteMessage(websocket.TextMessage, initial)
	}
	if err != nil {
		api.logger.Warn(fmt.Sprintf("writing initial payment state: %v", err), err)
		_ = conn.Close()
		return nil
	}
	if !api.hub.Register(conn) {
		_ = conn.Close()
		return nil
	}

	// clients only listen; reading detects disconnection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			api.hub.Unregister(conn)
			return nil
		}
	}
}
