package collabsession

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

type clientSession struct {
	conn *websocket.Conn

	// Outbound envelopes, buffered. A slow consumer drops frames rather
	// than blocking the room under the manager lock.
	sendCh chan any
	stop   func()
}

func newSession(conn *websocket.Conn) clientSession {
	ctx, cancelFn := context.WithCancel(context.Background())
	sess := clientSession{
		stop:   cancelFn,
		conn:   conn,
		sendCh: make(chan any, 16),
	}
	go sess.startSend(ctx)
	return sess
}

func (s clientSession) startSend(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.close()
			return
		case msg, opened := <-s.sendCh:
			if !opened {
				return
			}
			if err := s.write(msg); err != nil {
				log.WithError(err).Error("failed to send collaboration message")
			}
		}
	}
}

func (s clientSession) enqueue(msg any) {
	select {
	case s.sendCh <- msg:
	default:
		log.Warn("collaboration send buffer full, frame dropped")
	}
}

func (s clientSession) write(msg any) error {
	if s.conn == nil || s.conn.Conn == nil {
		return nil
	}
	return s.conn.WriteJSON(msg)
}

func (s clientSession) close() {
	if s.conn == nil || s.conn.Conn == nil {
		return
	}
	err := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Millisecond))
	if err != nil {
		log.WithError(err).Error("failed to close collaboration connection")
	}
}
