package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matthewbaird/opsconsole/internal/console/session"
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// ScreenFactory builds the screens of one session around its collaborators.
type ScreenFactory func(deps screen.Deps) []screen.Handle

// Options configures the screens every connection gets.
type Options struct {
	Actor    permission.Actor
	Oracle   permission.Oracle
	Home     string
	Metrics  *mutation.Metrics
	PageSize int
	Screens  ScreenFactory
}

// Handler manages WebSocket connections for the console.
type Handler struct {
	sessions *session.Manager
	opts     Options
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *session.Manager, opts Options) *Handler {
	if opts.Oracle == nil {
		opts.Oracle = permission.Grants()
	}
	return &Handler{sessions: sessions, opts: opts}
}

// conn serialises writes to one WebSocket.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(ctx context.Context, msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := wsjson.Write(ctx, c.ws, msg); err != nil && ctx.Err() == nil {
		log.Printf("console: write error: %v", err)
	}
}

func (c *conn) sendError(ctx context.Context, requestID, code, message string) {
	c.send(ctx, ServerMessage{
		Type:      TypeError,
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}

// ServeHTTP upgrades to WebSocket and runs the message loop. Loads and
// mutations run off the loop so a delete prompt can be answered while the
// delete waits for it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("console: websocket accept: %v", err)
		return
	}
	defer ws.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws}
	sess := h.newSession(ctx, c)
	h.sessions.Add(sess)

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		h.sessions.Remove(sess.ID)
	}()

	info := SessionData{SessionID: sess.ID, Actor: sess.Actor.ID, Role: sess.Actor.Role}
	for _, s := range sess.Screens() {
		if permission.CanEnter(h.opts.Oracle, sess.Actor, s.Name()) {
			info.Screens = append(info.Screens, ScreenInfo{Name: s.Name(), Title: s.Title()})
		}
	}
	c.send(ctx, ServerMessage{Type: TypeSession, Data: info})

	// Message loop
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("console: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		if h.sessions.Get(sess.ID) == nil {
			c.sendError(ctx, msg.ID, "session_expired", "session expired")
			ws.Close(websocket.StatusPolicyViolation, "session expired")
			return
		}
		sess.Touch()

		switch msg.Type {
		case TypePing:
			c.send(ctx, ServerMessage{Type: TypePong, RequestID: msg.ID})
		case TypeConfirm:
			var data ConfirmData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError(ctx, msg.ID, "invalid_data", "invalid confirm data")
				continue
			}
			if !sess.Confirmer().Answer(data.PromptID, data.Yes) {
				c.sendError(ctx, msg.ID, "unknown_prompt", "no pending prompt "+data.PromptID)
			}
		case TypeEnter, TypeLoad, TypeSubmit, TypeDelete:
			s, data, ok := h.screen(ctx, c, sess, msg)
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.handleAsync(ctx, c, sess, s, msg, data)
			}()
		case TypeFilter, TypeOpenCreate, TypeOpenEdit, TypeOpenView, TypeClose, TypeSetField:
			s, data, ok := h.screen(ctx, c, sess, msg)
			if !ok {
				continue
			}
			h.handleSync(ctx, c, s, msg, data)
		default:
			c.sendError(ctx, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) newSession(ctx context.Context, c *conn) *session.Session {
	var sess *session.Session
	confirmer := notify.NewPromptConfirmer(func(p notify.Prompt) {
		c.send(ctx, ServerMessage{Type: TypeConfirm, Data: PromptData(p)})
	})
	deps := screen.Deps{
		Actor:  h.opts.Actor,
		Oracle: h.opts.Oracle,
		Home:   h.opts.Home,
		Notifier: notify.Tee(
			notify.NotifierFunc(func(n notify.Notice) {
				c.send(ctx, ServerMessage{Type: TypeNotice, Data: NoticeData(n)})
			}),
			notify.LogNotifier{Prefix: "console"},
		),
		Confirmer: confirmer,
		Navigator: notify.NavigatorFunc(func(name string) {
			sess.SetCurrent(name)
			c.send(ctx, ServerMessage{Type: TypeRedirect, Data: RedirectData{Entity: name}})
		}),
		Metrics:  h.opts.Metrics,
		PageSize: h.opts.PageSize,
	}
	sess = session.NewSession(h.opts.Actor, h.opts.Screens(deps), confirmer)
	return sess
}

func (h *Handler) screen(ctx context.Context, c *conn, sess *session.Session, msg ClientMessage) (screen.Handle, ScreenData, bool) {
	var data ScreenData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError(ctx, msg.ID, "invalid_data", "invalid "+msg.Type+" data")
		return nil, data, false
	}
	s, ok := sess.Screen(data.Entity)
	if !ok {
		c.sendError(ctx, msg.ID, "unknown_entity", "unknown entity: "+data.Entity)
		return nil, data, false
	}
	return s, data, true
}

func (h *Handler) handleSync(ctx context.Context, c *conn, s screen.Handle, msg ClientMessage, data ScreenData) {
	var err error
	switch msg.Type {
	case TypeFilter:
		s.SetFilter(data.Search, data.Status)
	case TypeOpenCreate:
		_, err = s.OpenCreate()
	case TypeOpenEdit:
		_, err = s.OpenEdit(data.Key)
	case TypeOpenView:
		_, err = s.OpenView(data.Key)
	case TypeClose:
		s.Close()
	case TypeSetField:
		err = s.SetField(data.Field, data.Value)
	}
	if err != nil {
		h.reportError(ctx, c, msg.ID, err, "invalid_request")
		return
	}
	c.send(ctx, ServerMessage{Type: TypeScreen, RequestID: msg.ID, Data: s.Snapshot()})
}

func (h *Handler) handleAsync(ctx context.Context, c *conn, sess *session.Session, s screen.Handle, msg ClientMessage, data ScreenData) {
	var err error
	switch msg.Type {
	case TypeEnter:
		if err = s.Enter(ctx); errors.Is(err, screen.ErrNoAccess) {
			h.reportError(ctx, c, msg.ID, err, "")
			return
		}
		sess.SetCurrent(s.Name())
	case TypeLoad:
		err = s.Load(ctx)
	case TypeSubmit:
		var errs form.Errors
		errs, err = s.Submit(ctx)
		if errors.Is(err, screen.ErrInvalid) {
			c.send(ctx, ServerMessage{Type: TypeErrors, RequestID: msg.ID, Data: ErrorsData{Entity: s.Name(), Errors: errs}})
			err = nil
		}
	case TypeDelete:
		_, err = s.Delete(ctx, data.Key)
	}
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		h.reportError(ctx, c, msg.ID, err, "")
	}
	c.send(ctx, ServerMessage{Type: TypeScreen, RequestID: msg.ID, Data: s.Snapshot()})
}

// reportError sends an error message for failures the screen has not
// already surfaced. Gateway failures reach staff as notices or through the
// snapshot's load error, so unrecognised errors are only sent when fallback
// names a code for them.
func (h *Handler) reportError(ctx context.Context, c *conn, requestID string, err error, fallback string) {
	code := ""
	switch {
	case errors.Is(err, screen.ErrNoAccess):
		code = "no_access"
	case errors.Is(err, screen.ErrForbidden):
		code = "forbidden"
	case errors.Is(err, screen.ErrNoForm):
		code = "no_form"
	case errors.Is(err, screen.ErrNotInCollection):
		code = "not_found"
	case errors.Is(err, mutation.ErrBusy):
		code = "busy"
	}
	if code == "" {
		code = fallback
	}
	if code == "" {
		return
	}
	c.sendError(ctx, requestID, code, err.Error())
}
