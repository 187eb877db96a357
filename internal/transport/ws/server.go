// Package ws carries the legacy binary packet stream over websocket
// connections. Each binary message is exactly one framed packet; the
// designer packets themselves keep their historical layout.
package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"housecraft/internal/protocol"
	"housecraft/internal/sim/house"
)

// Resolver binds an authenticated connection to its acting mobile. The
// entity framework owns accounts and characters; the design server only
// needs the resulting handle.
type Resolver func(account string, ns house.NetState) (house.Mobile, error)

type Server struct {
	engine  *house.Engine
	resolve Resolver
	log     *log.Logger

	sendBuffer int

	upgrader websocket.Upgrader
}

func NewServer(engine *house.Engine, resolve Resolver, sendBuffer int, logger *log.Logger) *Server {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Server{
		engine:     engine,
		resolve:    resolve,
		log:        logger,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// session is one connected client; it is the house.NetState handed to the
// design engine. Outgoing packets flow through a buffered channel and a
// single writer goroutine; Send never blocks the engine.
type session struct {
	conn *websocket.Conn
	out  chan []byte
	log  *log.Logger

	mu     sync.Mutex
	mobile house.Mobile

	dropOnce sync.Once
}

func (s *session) Send(p []byte) {
	select {
	case s.out <- p:
	default:
		// Slow client. Dropping a design packet is recoverable: the
		// client re-syncs via a details query.
		s.dropOnce.Do(func() {
			s.log.Printf("ws: send buffer full, dropping packets addr=%s", s.conn.RemoteAddr())
		})
	}
}

func (s *session) Mobile() house.Mobile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mobile
}

func (s *session) setMobile(m house.Mobile) {
	s.mu.Lock()
	s.mobile = m
	s.mu.Unlock()
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		account := strings.TrimSpace(r.URL.Query().Get("account"))
		if account == "" {
			http.Error(rw, "missing account", http.StatusBadRequest)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := &session{
			conn: conn,
			out:  make(chan []byte, s.sendBuffer),
			log:  s.log,
		}

		mobile, err := s.resolve(account, sess)
		if err != nil {
			s.log.Printf("ws: resolve account=%q: %v", account, err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown account"),
				time.Now().Add(time.Second))
			return
		}
		sess.setMobile(mobile)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case p, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			if kind != websocket.BinaryMessage {
				continue
			}

			decoded, err := protocol.DecodeInbound(msg)
			if err != nil {
				s.log.Printf("ws: account=%q bad packet: %v", account, err)
				continue
			}

			switch v := decoded.(type) {
			case protocol.QueryDesignDetails:
				s.engine.HandleQueryDetails(mobile, v)
			case protocol.EncodedCommand:
				s.engine.Handle(mobile, v)
			}
		}
	}
}
