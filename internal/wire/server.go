package wire

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"clobengine/internal/engine"
)

const (
	maxRecvSize        = 4 * 1024
	defaultConnTimeout = 5 * time.Second
)

// clientMessage links a decoded request to the connection it arrived on.
type clientMessage struct {
	conn    net.Conn
	message Message
}

// Server accepts TCP connections, decodes requests off them via a worker
// pool, and serializes every call into the engine through a single
// session-handler goroutine — the engine itself is never called from more
// than one goroutine at a time.
type Server struct {
	addr    string
	eng     *engine.Engine
	pool    WorkerPool
	cancel  context.CancelFunc
	inbound chan clientMessage
}

// New builds a server around eng, listening on addr, backed by nWorkers
// connection-handling goroutines.
func New(addr string, eng *engine.Engine, nWorkers int) *Server {
	return &Server{
		addr:    addr,
		eng:     eng,
		pool:    NewWorkerPool(nWorkers),
		inbound: make(chan clientMessage, 1),
	}
}

// Shutdown stops the running server.
func (s *Server) Shutdown() {
	log.Info().Msg("wire server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run listens and serves until ctx is cancelled or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("wire: listen %s: %w", s.addr, err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("error closing listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("addr", s.addr).Msg("wire server listening")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting connection")
				continue
			}
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
			s.pool.AddTask(conn)
		}
	}
}

// sessionHandler is the single goroutine that ever touches s.eng.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case cm := <-s.inbound:
			report := s.dispatch(cm.message)
			if _, err := cm.conn.Write(report.Serialize()); err != nil {
				log.Error().Err(err).Str("remote", cm.conn.RemoteAddr().String()).Msg("error writing report")
			}
		}
	}
}

// dispatch runs one decoded request against the engine and returns the
// report to send back.
func (s *Server) dispatch(message Message) Report {
	switch m := message.(type) {
	case PlaceLimitOrderMessage:
		result, err := s.eng.PlaceLimitOrder(m.Owner, m.Side, m.Price, m.Quantity, m.TIF, m.WallClock)
		if err != nil {
			return errorReport(m.RequestID, err)
		}
		return placeReport(m.RequestID, result)

	case CancelOrderMessage:
		cancelled, err := s.eng.CancelOrder(m.Owner, m.Side, m.OrderID)
		if err != nil {
			return errorReport(m.RequestID, err)
		}
		return Report{Type: ExecutionReport, RequestID: m.RequestID, OrderID: cancelled.OrderID}

	case BalanceMessage:
		return s.dispatchBalance(m)

	case ConsumeEventsMessage:
		processed, err := s.eng.ConsumeEvents(m.Limit, m.MakerBalances)
		if err != nil {
			return errorReport(m.RequestID, err)
		}
		return Report{Type: ExecutionReport, RequestID: m.RequestID, OrderID: uint64(processed)}

	default:
		return Report{Type: ErrorReport, ErrMsg: ErrInvalidMessageType.Error()}
	}
}

func (s *Server) dispatchBalance(m BalanceMessage) Report {
	switch m.Type_ {
	case Heartbeat:
		return Report{Type: ExecutionReport, RequestID: m.RequestID}
	case Deposit:
		deposit, err := s.eng.Deposit(m.Owner, m.IsBase, m.Amount)
		if err != nil {
			return errorReport(m.RequestID, err)
		}
		return Report{Type: ExecutionReport, RequestID: m.RequestID, OrderID: deposit.NewBalance}
	case Withdraw:
		withdraw, err := s.eng.Withdraw(m.Owner, m.IsBase, m.Amount)
		if err != nil {
			return errorReport(m.RequestID, err)
		}
		return Report{Type: ExecutionReport, RequestID: m.RequestID, OrderID: withdraw.NewBalance}
	case CloseBalance:
		if err := s.eng.CloseUserBalance(m.Owner); err != nil {
			return errorReport(m.RequestID, err)
		}
		return Report{Type: ExecutionReport, RequestID: m.RequestID}
	default:
		return Report{Type: ErrorReport, RequestID: m.RequestID, ErrMsg: ErrInvalidMessageType.Error()}
	}
}

// handleConnection reads exactly one request off conn, decodes it, and
// hands it to the session handler. A connection-level error closes the
// connection rather than killing the whole tomb.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return nil
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("error setting connection deadline")
		return conn.Close()
	}

	buf := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buf)
		if err != nil {
			log.Error().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("error reading connection")
			return conn.Close()
		}

		message, err := ParseMessage(buf[:n])
		if err != nil {
			log.Error().Err(err).Msg("error parsing message")
			return conn.Close()
		}

		s.inbound <- clientMessage{conn: conn, message: message}
		s.pool.AddTask(conn)
	}
	return nil
}
