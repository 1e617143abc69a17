package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"bank-ledger/internal/core/ports"
	"bank-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Server accepts ledger connections and runs one dispatcher goroutine per
// connection. No per-connection state is kept between requests: every line
// is self-describing and a bad request never closes the connection.
//
// There is no connection limit or per-request timeout; a slow peer holds
// its goroutine until it disconnects.
type Server struct {
	ledger ports.Ledger
	log    zerolog.Logger

	mu  sync.Mutex
	lis net.Listener
	wg  sync.WaitGroup
}

// NewServer creates a Server dispatching onto the given ledger.
func NewServer(ledger ports.Ledger, log zerolog.Logger) *Server {
	return &Server{ledger: ledger, log: log}
}

// Listen binds the TCP listener. Call Serve to start accepting.
func (s *Server) Listen(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}
	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()
	s.log.Info().Str("addr", lis.Addr().String()).Msg("ledger server listening")
	return nil
}

// Addr returns the bound listener address. Listen must have succeeded.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lis.Addr()
}

// Serve accepts connections until the listener is closed. It returns nil
// after Close and the underlying error otherwise.
func (s *Server) Serve() error {
	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops the listener and waits for in-flight connections to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()

	var err error
	if lis != nil {
		err = lis.Close()
	}
	s.wg.Wait()
	return err
}

// handleConn is the per-connection dispatch loop: read a line, decode,
// execute, write exactly one response line, repeat until EOF or read error.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connID := uuid.New().String()
	log := s.log.With().
		Str("conn_id", connID).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	log.Info().Msg("client connected")

	ctx := context.Background()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			response := s.process(ctx, log, line)
			if _, werr := io.WriteString(conn, response+"\n"); werr != nil {
				log.Error().Err(werr).Msg("failed to write response")
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info().Msg("client disconnected")
			} else {
				log.Error().Err(err).Msg("failed to read from client")
			}
			return
		}
	}
}

// process executes one decoded request and renders the response line.
// Every failure maps to a descriptive line; internal causes go to the log,
// never across the wire.
func (s *Server) process(ctx context.Context, log zerolog.Logger, line string) string {
	cmd, perr := ParseCommand(line)
	if perr != nil {
		return perr.Message
	}

	var (
		newBalance int64
		err        error
	)
	switch cmd.Verb {
	case VerbDeposit:
		newBalance, err = s.ledger.Deposit(ctx, cmd.Name, cmd.Amount)
	case VerbWithdraw:
		newBalance, err = s.ledger.Withdraw(ctx, cmd.Name, cmd.Amount)
	}
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Unwrap() != nil {
				log.Error().Err(appErr).Str("verb", string(cmd.Verb)).Str("account", cmd.Name).
					Msg("request failed")
			}
			return appErr.Message
		}
		log.Error().Err(err).Str("verb", string(cmd.Verb)).Str("account", cmd.Name).
			Msg("request failed with unclassified error")
		return apperror.ErrStorage(err).Message
	}

	return SuccessLine(cmd.Verb, newBalance)
}
