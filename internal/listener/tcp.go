package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// TcpListener accepts raw TCP game clients and hands each connection to the
// connection manager. It is the main ingress of the server.
type TcpListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTcpListener(port uint16, cm *ConnectionManager) *TcpListener {
	return &TcpListener{
		port: port,
		cm:   cm,
	}
}

func (l *TcpListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for game clients", "port", l.port)

	// Connections share one context so they all unwind together on shutdown.
	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting game connection", "error", err)
			continue
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			// Keepalives reap clients that vanish without a FIN.
			tc.SetKeepAlive(true)
			tc.SetKeepAlivePeriod(30 * time.Second)
			tc.SetNoDelay(true)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			l.cm.AcceptGame(connCtx, conn)
		}()
	}
}
