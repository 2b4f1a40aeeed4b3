package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"ladder/internal/engine"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = time.Second
)

var ErrImproperConversion = errors.New("improper type conversion")

// clientMessage links a parsed wire message to the connection it arrived
// on.
type clientMessage struct {
	conn    net.Conn
	message Message
}

// Server is a TCP front end for an in-process engine.Engine. It is a
// collaborator, not part of the core: every operation it exposes is a
// thin wire-protocol wrapper around Engine.Submit/Cancel/Modify/Book.
type Server struct {
	address string
	port    int
	engine  *engine.Engine
	pool    workerPool
	cancel  context.CancelFunc

	sessionsLock sync.Mutex
	sessions     map[string]net.Conn // owner name -> live connection
	orderOwner   map[uint64]string   // order id -> owner that submitted it

	messages chan clientMessage
}

// New creates a server bound to address:port, dispatching into engine.
func New(address string, port int, eng *engine.Engine) *Server {
	return &Server{
		address:    address,
		port:       port,
		engine:     eng,
		pool:       newWorkerPool(defaultNWorkers),
		sessions:   make(map[string]net.Conn),
		orderOwner: make(map[uint64]string),
		messages:   make(chan clientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run accepts connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("new client connected")
			s.pool.addTask(conn)
		}
	}
}

// sessionHandler drains parsed messages and dispatches them one at a
// time, so submissions are processed in arrival order (spec §5: the
// engine itself has no internal concurrency).
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case cm := <-s.messages:
			if err := s.handleMessage(cm); err != nil {
				log.Error().Err(err).Str("address", cm.conn.RemoteAddr().String()).Msg("error handling message")
			}
		}
	}
}

func (s *Server) handleMessage(cm clientMessage) error {
	switch cm.message.GetType() {
	case NewOrder:
		m, ok := cm.message.(NewOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		s.registerSession(m.Owner, cm.conn)

		trades, err := s.engine.Submit(m.Side, m.Price, m.Quantity)
		if err != nil {
			s.sendReport(cm.conn, errorReport(m.CorrelationID, err))
			return nil
		}
		s.recordOwner(s.engine.LastOrderID(), m.Owner)
		s.reportTrades(m.CorrelationID, m.Side, trades)

	case CancelOrder:
		m, ok := cm.message.(CancelOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		s.engine.Cancel(m.OrderID)
		s.sendReport(cm.conn, Report{MessageType: ExecutionReport, CorrelationID: m.CorrelationID})

	case ModifyOrder:
		m, ok := cm.message.(ModifyOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		owner := s.ownerOf(m.OrderID)
		order := s.engine.Book().GetOrder(m.OrderID)

		trades, err := s.engine.Modify(m.OrderID, m.NewPrice, m.NewQuantity)
		if err != nil {
			s.sendReport(cm.conn, errorReport(m.CorrelationID, err))
			return nil
		}
		if order != nil && order.Price != m.NewPrice {
			// Repriced: cancel+resubmit assigned a new id under the same owner.
			s.recordOwner(s.engine.LastOrderID(), owner)
		}
		side := engine.Buy
		if order != nil {
			side = order.Side
		}
		s.reportTrades(m.CorrelationID, side, trades)

	case LogBook:
		s.logBook()

	default:
		log.Error().Int("messageType", int(cm.message.GetType())).Msg("invalid message type")
		return ErrInvalidMessageType
	}
	return nil
}

// reportTrades sends one ExecutionReport to the submitter and one to each
// maker counterparty still connected.
func (s *Server) reportTrades(correlationID uuid.UUID, submitterSide engine.Side, trades []engine.Trade) {
	for _, trade := range trades {
		s.sendReportTo(s.ownerOf(trade.TakerOrderID), tradeReport(correlationID, submitterSide, trade))
		s.sendReportTo(s.ownerOf(trade.MakerOrderID), tradeReport(uuid.Nil, opposite(submitterSide), trade))
	}
}

func (s *Server) sendReportTo(owner string, report Report) {
	s.sessionsLock.Lock()
	conn, ok := s.sessions[owner]
	s.sessionsLock.Unlock()
	if !ok {
		return
	}
	s.sendReport(conn, report)
}

func (s *Server) sendReport(conn net.Conn, report Report) {
	if _, err := conn.Write(report.Serialize()); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("unable to send report")
		s.deleteSessionByConn(conn)
	}
}

func (s *Server) logBook() {
	b := s.engine.Book()
	bid, bidOk := b.BestBid()
	ask, askOk := b.BestAsk()
	log.Info().
		Interface("bestBid", optionalPrice(bid, bidOk)).
		Interface("bestAsk", optionalPrice(ask, askOk)).
		Msg("book snapshot")
}

func optionalPrice(price int64, ok bool) any {
	if !ok {
		return nil
	}
	return price
}

// handleConnection reads exactly one message off conn, dispatches it, and
// puts the connection back into the pool so the next message (from this
// or another client) can be served. A slow or idle client only ever holds
// up the worker handling it, never the others.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("failed setting deadline")
		conn.Close()
		return nil
	}

	select {
	case <-t.Dying():
		return nil
	default:
		buffer := make([]byte, maxRecvSize)
		n, err := conn.Read(buffer)
		if err != nil {
			log.Debug().Err(err).Str("address", conn.RemoteAddr().String()).Msg("connection closed")
			s.deleteSessionByConn(conn)
			conn.Close()
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
			s.pool.addTask(conn)
			return nil
		}

		s.messages <- clientMessage{conn: conn, message: message}
		s.pool.addTask(conn)
	}
	return nil
}

func (s *Server) registerSession(owner string, conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[owner] = conn
}

func (s *Server) recordOwner(orderID uint64, owner string) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.orderOwner[orderID] = owner
}

func (s *Server) ownerOf(orderID uint64) string {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	return s.orderOwner[orderID]
}

func (s *Server) deleteSessionByConn(conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	for owner, c := range s.sessions {
		if c == conn {
			delete(s.sessions, owner)
		}
	}
}

func opposite(side engine.Side) engine.Side {
	if side == engine.Buy {
		return engine.Sell
	}
	return engine.Buy
}
