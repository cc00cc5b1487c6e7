package controller

import (
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/songquanpeng/model-compare/model"
	"github.com/songquanpeng/model-compare/relay/comparison"
)

func bindPrompt(c *gin.Context) (comparison.Prompt, error) {
	var prompt comparison.Prompt
	if err := c.ShouldBindJSON(&prompt); err != nil && !errors.Is(err, io.EOF) {
		return prompt, &model.InvalidInputError{Err: errors.Wrap(err, "decode prompt")}
	}
	return prompt, nil
}

// toggle aborts the running batch or starts one over the active slots.
func (ctl *Controller) toggle(c *gin.Context, prompt comparison.Prompt) (bool, error) {
	if ctl.orchestrator.Abort() {
		return false, nil
	}
	slots, err := ctl.workspace.ActiveSlots(gmw.Ctx(c))
	if err != nil {
		return false, err
	}
	return ctl.orchestrator.Toggle(ctl.batchCtx, slots, prompt)
}

// ToggleCompare starts a batch when idle and aborts it when running.
func (ctl *Controller) ToggleCompare(c *gin.Context) {
	prompt, err := bindPrompt(c)
	if err != nil {
		respondError(c, err)
		return
	}

	started, err := ctl.toggle(c, prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	gmw.GetLogger(c).Info("compare toggled", zap.Bool("started", started))
	respondOK(c, ctl.orchestrator.Snapshot())
}

// AbortCompare aborts the running batch, if any.
func (ctl *Controller) AbortCompare(c *gin.Context) {
	ctl.orchestrator.Abort()
	respondOK(c, ctl.orchestrator.Snapshot())
}

func (ctl *Controller) GetCompare(c *gin.Context) {
	respondOK(c, ctl.orchestrator.Snapshot())
}

// StreamCompare pushes the response collection as server-sent events until
// the batch settles or the client leaves. An idle orchestrator yields a
// single event.
func (ctl *Controller) StreamCompare(c *gin.Context) {
	updates, unsubscribe := ctl.orchestrator.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap := <-updates:
			c.SSEvent("responses", snap)
			return snap.Running
		case <-c.Request.Context().Done():
			return false
		}
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// wsCommand is a client message on the compare websocket.
type wsCommand struct {
	Type string `json:"type"`
	comparison.Prompt
}

type wsMessage struct {
	Type    string               `json:"type"`
	Data    *comparison.Snapshot `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`
}

const (
	wsCommandRun   = "run"
	wsCommandAbort = "abort"
)

// CompareWebsocket is a bidirectional variant of the compare endpoints.
// Clients send {"type":"run",...prompt} or {"type":"abort"} and receive
// every collection update as {"type":"responses","data":...}. Sessions are
// closed with CloseGoingAway when the server shuts down.
func (ctl *Controller) CompareWebsocket(c *gin.Context) {
	lg := gmw.GetLogger(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		lg.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	updates, unsubscribe := ctl.orchestrator.Subscribe()
	defer unsubscribe()

	errs := make(chan string, 8)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var cmd wsCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					lg.Debug("websocket read ended", zap.Error(err))
				}
				return
			}

			var failure string
			switch cmd.Type {
			case wsCommandRun:
				if _, err := ctl.toggle(c, cmd.Prompt); err != nil {
					failure = err.Error()
				}
			case wsCommandAbort:
				ctl.orchestrator.Abort()
			default:
				failure = "unknown command: " + cmd.Type
			}
			if failure == "" {
				continue
			}
			select {
			case errs <- failure:
			default:
				lg.Warn("websocket error dropped", zap.String("message", failure))
			}
		}
	}()

	// single writer
	for {
		var msg wsMessage
		select {
		case snap := <-updates:
			msg = wsMessage{Type: "responses", Data: &snap}
		case text := <-errs:
			msg = wsMessage{Type: "error", Message: text}
		case <-closed:
			return
		case <-ctl.batchCtx.Done():
			// server shutdown
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"),
				time.Now().Add(time.Second))
			return
		}
		if err := conn.WriteJSON(msg); err != nil {
			lg.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}
