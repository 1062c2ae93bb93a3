package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsNotifier adapts a websocket connection to internal.Notifier.
type wsNotifier struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (n *wsNotifier) WriteJSON(v any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return n.conn.WriteJSON(v)
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

// HandleWebSocket upgrades the request and subscribes the player named by the
// player_id query parameter to the match in the URL path.
func (e *Engine) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["matchCode"]
	playerID := r.URL.Query().Get("player_id")
	logger := log.WithField("match", code)

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("[HandleWebSocket] Upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)
	notifier := &wsNotifier{conn: conn}

	if _, err := e.Subscribe(code, playerID, notifier); err != nil {
		logger.Warnf("[HandleWebSocket] Subscribe rejected for %q: %v", playerID, err)
		_ = notifier.WriteJSON(internal.Message[internal.ErrorData]{
			Type: internal.MsgError,
			Data: internal.ErrorData{Message: err.Error()},
		})
		conn.Close()
		return
	}

	go e.handleMessages(conn, code, playerID, notifier)
}

// handleMessages reads commands until the connection drops, which counts as
// a disconnect.
func (e *Engine) handleMessages(conn *websocket.Conn, code, playerID string, notifier internal.Notifier) {
	logger := log.WithFields(log.Fields{"match": code, "player": playerID})
	defer func() {
		conn.Close()
		e.Disconnect(code, playerID, notifier)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("[handleMessages] Read error: %v", err)
			}
			return
		}
		if err := e.dispatch(code, playerID, raw); err != nil {
			logger.Debugf("[handleMessages] Dropping message: %v", err)
		}
	}
}

var errUnknownMessage = errors.New("unknown message type")

// dispatch decodes one client command and routes it to the engine.
func (e *Engine) dispatch(code, playerID string, raw []byte) error {
	var base internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &base); err != nil {
		return err
	}

	switch base.Type {
	case internal.MsgSubmitClue:
		var req internal.ClueRequest
		if err := json.Unmarshal(base.Data, &req); err != nil {
			return err
		}
		e.SubmitClue(code, playerID, req.Text)

	case internal.MsgSubmitGuess:
		var req internal.GuessRequest
		if err := json.Unmarshal(base.Data, &req); err != nil {
			return err
		}
		e.SubmitGuess(code, playerID, req.Text)

	case internal.MsgPassTurn:
		e.PassTurn(code, playerID)

	case internal.MsgSubmitVotes:
		var req internal.VotesRequest
		if err := json.Unmarshal(base.Data, &req); err != nil {
			return err
		}
		e.SubmitVotes(code, playerID, req.Votes)

	default:
		return errUnknownMessage
	}
	return nil
}
