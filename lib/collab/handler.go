package collabhandler

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/lib/access"
	"vessel-works-backend/lib/apperr"
	collabsession "vessel-works-backend/lib/collab/session"
	workformhandler "vessel-works-backend/lib/workform"
	"vessel-works-backend/middleware"
	"vessel-works-backend/models"
	wsmodels "vessel-works-backend/models/ws"
)

// Manager is the shared collaboration state; the room-status REST
// bridge reads from it too.
var Manager collabsession.Provider

func NewHandler() {
	Manager = collabsession.NewManager()
}

func InitWs(app *fiber.App) {
	app.Use("", middleware.AuthorizationRequired())
	app.Use("", func(ctx *fiber.Ctx) error {
		ctx.Locals("userID", middleware.GetUserID(ctx))
		ctx.Locals("userName", middleware.GetUserName(ctx))
		ctx.Locals("orgID", middleware.GetUserOrg(ctx))
		ctx.Locals("role", string(middleware.GetUserRole(ctx)))
		return ctx.Next()
	})
	app.Get("/", websocket.New(collabDispatch))
}

// connCtx is the identity of one live connection, fixed at handshake.
type connCtx struct {
	socketID string
	userID   string
	userName string
	orgID    string
	role     models.UserRole
}

func collabDispatch(c *websocket.Conn) {
	conn := connCtx{
		socketID: uuid.NewString(),
		userID:   c.Locals("userID").(string),
		userName: c.Locals("userName").(string),
		orgID:    c.Locals("orgID").(string),
		role:     models.UserRole(c.Locals("role").(string)),
	}
	Manager.Register(conn.socketID, wsmodels.PeerInfo{
		SocketID: conn.socketID,
		UserID:   conn.userID,
		UserName: conn.userName,
	}, c)
	defer Manager.Unregister(conn.socketID)

	logger := log.
		WithField("socket_id", conn.socketID).
		WithField("user_id", conn.userID)
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Error("collaboration connection dropped")
			}
			return
		}
		var envelope wsmodels.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			Manager.SendTo(conn.socketID, wsmodels.EvFormError, wsmodels.ErrorPayload{
				Code:    "BAD_ENVELOPE",
				Message: "malformed message envelope",
			})
			continue
		}
		handleEvent(conn, envelope)
	}
}

// handleEvent never lets an error escape to the read loop; failures are
// scoped to an error event back to the offending connection.
func handleEvent(conn connCtx, envelope wsmodels.Envelope) {
	switch envelope.Event {
	case wsmodels.EvRoomJoin:
		withPayload(conn, envelope, wsmodels.EvRoomError, func(p wsmodels.RoomRef) error {
			if err := checkView(conn, p.WorkOrderID); err != nil {
				return err
			}
			Manager.JoinVideo(conn.socketID, p.WorkOrderID)
			return nil
		})
	case wsmodels.EvRoomLeave:
		withPayload(conn, envelope, wsmodels.EvRoomError, func(p wsmodels.RoomRef) error {
			Manager.LeaveVideo(conn.socketID, p.WorkOrderID)
			return nil
		})
	case wsmodels.EvRoomStatus:
		withPayload(conn, envelope, wsmodels.EvRoomError, func(p wsmodels.RoomRef) error {
			Manager.SendTo(conn.socketID, wsmodels.EvRoomStatus, Manager.RoomStatus(p.WorkOrderID))
			return nil
		})
	case wsmodels.EvSignalOffer, wsmodels.EvSignalAnswer, wsmodels.EvSignalICECandidate:
		relaySignal(conn, envelope)
	case wsmodels.EvFormJoin:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.RoomRef) error {
			if err := checkView(conn, p.WorkOrderID); err != nil {
				return err
			}
			Manager.JoinForm(conn.socketID, p.WorkOrderID)
			return nil
		})
	case wsmodels.EvFormLeave:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.RoomRef) error {
			Manager.LeaveForm(conn.socketID, p.WorkOrderID)
			return nil
		})
	case wsmodels.EvFormLock:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.FieldRef) error {
			Manager.Lock(conn.socketID, p.WorkOrderID, p.EntryID, p.Field)
			return nil
		})
	case wsmodels.EvFormUnlock:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.FieldRef) error {
			Manager.Unlock(conn.socketID, p.WorkOrderID, p.EntryID, p.Field)
			return nil
		})
	case wsmodels.EvFormUpdate:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.FieldUpdate) error {
			if err := workformhandler.Instance.UpdateField(p.EntryID, p.Field, p.Value, conn.userID); err != nil {
				return err
			}
			// The sender holds authoritative local state already.
			Manager.BroadcastForm(p.WorkOrderID, wsmodels.EvFormUpdated, wsmodels.FieldUpdated{
				FieldUpdate: p,
				UserID:      conn.userID,
			}, conn.socketID)
			return nil
		})
	case wsmodels.EvFormScreenshot:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.ScreenshotPayload) error {
			_, err := workformhandler.Instance.AddScreenshot(context.Background(),
				conn.orgID, p.WorkOrderID, p.EntryID, conn.userID, p.DataURL)
			if err != nil {
				return err
			}
			return broadcastAttachments(conn, p.WorkOrderID, p.EntryID, wsmodels.EvFormScreenshotAdded)
		})
	case wsmodels.EvFormScreenshotRemove:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.ScreenshotRemovePayload) error {
			entry, err := workformhandler.Instance.GetByID(p.EntryID)
			if err != nil {
				return err
			}
			if p.Index < 0 || p.Index >= len(entry.Attachments) {
				return apperr.Validation("screenshot index out of range")
			}
			err = workformhandler.Instance.RemoveScreenshot(context.Background(), p.EntryID, entry.Attachments[p.Index])
			if err != nil {
				return err
			}
			return broadcastAttachments(conn, p.WorkOrderID, p.EntryID, wsmodels.EvFormScreenshotRemoved)
		})
	case wsmodels.EvFormComplete:
		withPayload(conn, envelope, wsmodels.EvFormError, func(p wsmodels.EntryRef) error {
			if err := workformhandler.Instance.Complete(p.EntryID, conn.userID); err != nil {
				return err
			}
			Manager.ReleaseEntryLocks(p.WorkOrderID, p.EntryID)
			Manager.BroadcastForm(p.WorkOrderID, wsmodels.EvFormCompleted, wsmodels.CompletedPayload{
				WorkOrderID: p.WorkOrderID,
				EntryID:     p.EntryID,
				UserID:      conn.userID,
			}, "")
			return nil
		})
	default:
		Manager.SendTo(conn.socketID, wsmodels.EvFormError, wsmodels.ErrorPayload{
			Code:    "UNKNOWN_EVENT",
			Message: "unknown event " + envelope.Event,
		})
	}
}

// broadcastAttachments pushes the canonical post-persist attachment
// list to the whole room, sender included; media ids are assigned
// server side so local state is not authoritative.
func broadcastAttachments(conn connCtx, workOrderID, entryID, event string) error {
	entry, err := workformhandler.Instance.GetByID(entryID)
	if err != nil {
		return err
	}
	Manager.BroadcastForm(workOrderID, event, wsmodels.ScreenshotChanged{
		WorkOrderID: workOrderID,
		EntryID:     entryID,
		Attachments: entry.Attachments,
		UserID:      conn.userID,
	}, "")
	return nil
}

func relaySignal(conn connCtx, envelope wsmodels.Envelope) {
	withPayload(conn, envelope, wsmodels.EvRoomError, func(p wsmodels.SignalPayload) error {
		delivered := Manager.Relay(p.TargetSocketID, envelope.Event, wsmodels.SignalRelay{
			FromSocketID: conn.socketID,
			UserID:       conn.userID,
			UserName:     conn.userName,
			Offer:        p.Offer,
			Answer:       p.Answer,
			Candidate:    p.Candidate,
		})
		// A vanished target is not an error; negotiation just dies.
		if !delivered {
			log.
				WithField("socket_id", conn.socketID).
				WithField("target", p.TargetSocketID).
				Debug("signal target not connected")
		}
		return nil
	})
}

func checkView(conn connCtx, workOrderID string) error {
	allowed, err := access.Instance.CanView(workOrderID, conn.userID, conn.orgID, conn.role)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("no access to this work order")
	}
	return nil
}

// withPayload decodes the envelope payload and converts a handler
// error into a scoped error event for the sender only.
func withPayload[T any](conn connCtx, envelope wsmodels.Envelope, errEvent string, handle func(p T) error) {
	var payload T
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			Manager.SendTo(conn.socketID, errEvent, wsmodels.ErrorPayload{
				Code:    "BAD_PAYLOAD",
				Message: "malformed payload for " + envelope.Event,
			})
			return
		}
	}
	if err := handle(payload); err != nil {
		code := "INTERNAL"
		if appErr, ok := apperr.AsAppError(err); ok {
			code = string(appErr.Code)
		} else {
			log.
				WithField("socket_id", conn.socketID).
				WithField("event", envelope.Event).
				WithError(err).
				Error("collaboration event failed")
		}
		Manager.SendTo(conn.socketID, errEvent, wsmodels.ErrorPayload{
			Code:    code,
			Message: err.Error(),
		})
	}
}
