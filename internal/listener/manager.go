package listener

import (
	"context"
	"io"
	"log/slog"
)

// SessionRunner drives one game client connection to completion. Implemented
// by the session manager.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriteCloser) error
}

// ConsoleRunner drives one admin console connection to completion.
type ConsoleRunner interface {
	Run(ctx context.Context, rw io.ReadWriter) error
}

// ConnectionManager fans accepted connections out to the right handler: game
// clients speak the binary protocol, admin connections get the console.
type ConnectionManager struct {
	sessions SessionRunner
	console  ConsoleRunner
}

func NewConnectionManager(sessions SessionRunner, console ConsoleRunner) *ConnectionManager {
	return &ConnectionManager{
		sessions: sessions,
		console:  console,
	}
}

// AcceptGame runs a binary-protocol game session on conn.
func (m *ConnectionManager) AcceptGame(ctx context.Context, conn io.ReadWriteCloser) {
	if err := m.sessions.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "game session", "error", err)
	}
}

// AcceptAdmin runs an admin console session on conn.
func (m *ConnectionManager) AcceptAdmin(ctx context.Context, conn io.ReadWriter) {
	if err := m.console.Run(ctx, newCRLFReadWriter(conn)); err != nil && ctx.Err() == nil {
		slog.WarnContext(ctx, "admin session", "error", err)
	}
}
