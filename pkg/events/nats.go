package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// HeaderEvent carries the event name on published messages.
const HeaderEvent = "Debate-Event"

// NATSSink publishes framed events to a subject.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// Subject returns the subject events of a debate are published to.
func Subject(prefix, debateID string) string {
	return prefix + "." + debateID
}

// NewNATSSink publishes to Subject(prefix, debateID) over conn.
func NewNATSSink(conn *nats.Conn, prefix, debateID string) *NATSSink {
	return &NATSSink{conn: conn, subject: Subject(prefix, debateID)}
}

// Emit implements Sink.
func (s *NATSSink) Emit(_ context.Context, e Event) error {
	frame, err := Marshal(e)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(s.subject)
	msg.Header.Set(HeaderEvent, e.Name)
	msg.Data = frame
	if err := s.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", s.subject, err)
	}
	return nil
}

// Server is an in-process NATS server.
type Server struct {
	ns *natsserver.Server
}

// StartServer runs an embedded NATS server on port. A negative port picks
// a free one.
func StartServer(port int) (*Server, error) {
	ns, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("nats server not ready")
	}
	return &Server{ns: ns}, nil
}

// ClientURL returns the URL clients connect to.
func (s *Server) ClientURL() string {
	return s.ns.ClientURL()
}

// Close shuts the server down and waits for it to stop.
func (s *Server) Close() {
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}
