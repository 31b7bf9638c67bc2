package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/persistence"
	"github.com/sanonone/grafdb/pkg/types"
)

// replayAOF rebuilds the in-memory store from the log. A clean EOF ends the
// replay; a corrupt or truncated final frame (the typical crash artifact) is
// logged and the replay stops there, keeping everything before it. Replay
// never enforces referential integrity: the log records what was applied, so
// it is applied back verbatim.
func (e *Engine) replayAOF() error {
	f, err := os.Open(e.aofPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	r := bufio.NewReader(f)
	var applied, failed int

	for {
		payload, err := persistence.ReadFrame(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, persistence.ErrIncompleteFrame) || errors.Is(err, persistence.ErrChecksumMismatch) || errors.Is(err, persistence.ErrInvalidMagic) {
			slog.Warn("AOF replay stopped at corrupt tail", "path", e.aofPath, "applied", applied, "error", err)
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read AOF frame: %w", err)
		}

		cmd, err := persistence.DecodeCommand(payload)
		if err != nil {
			return fmt.Errorf("failed to decode AOF command: %w", err)
		}
		if err := e.applyCommand(cmd); err != nil {
			failed++
			slog.Warn("AOF replay: skipping command", "command", cmd.Name, "error", err)
			continue
		}
		applied++
	}

	if applied > 0 || failed > 0 {
		slog.Info("AOF replay complete",
			"path", e.aofPath,
			"applied", applied,
			"skipped", failed,
			"duration", time.Since(start))
	}
	return nil
}

func (e *Engine) applyCommand(cmd *persistence.Command) error {
	switch cmd.Name {
	case cmdCreateVertex:
		if len(cmd.Args) != 2 {
			return fmt.Errorf("%s: expected 2 args, got %d", cmd.Name, len(cmd.Args))
		}
		id, err := parseUUIDArg(cmd, 0)
		if err != nil {
			return err
		}
		e.store.CreateVertex(types.Vertex{ID: id, T: types.Identifier(cmd.Args[1])})
		return nil

	case cmdCreateEdge:
		edge, err := parseEdgeArgs(cmd, 0)
		if err != nil {
			return err
		}
		e.store.CreateEdge(edge, false)
		return nil

	case cmdDeleteVertex:
		id, err := parseUUIDArg(cmd, 0)
		if err != nil {
			return err
		}
		e.store.DeleteVertex(id)
		return nil

	case cmdDeleteEdge:
		edge, err := parseEdgeArgs(cmd, 0)
		if err != nil {
			return err
		}
		e.store.DeleteEdge(edge)
		return nil

	case cmdSetVertexProperty:
		id, err := parseUUIDArg(cmd, 0)
		if err != nil {
			return err
		}
		if len(cmd.Args) != 3 {
			return fmt.Errorf("%s: expected 3 args, got %d", cmd.Name, len(cmd.Args))
		}
		return e.store.SetVertexProperty(id, types.Identifier(cmd.Args[1]), types.Value(cmd.Args[2]))

	case cmdDelVertexProperty:
		id, err := parseUUIDArg(cmd, 0)
		if err != nil {
			return err
		}
		if len(cmd.Args) != 2 {
			return fmt.Errorf("%s: expected 2 args, got %d", cmd.Name, len(cmd.Args))
		}
		e.store.DeleteVertexProperty(id, types.Identifier(cmd.Args[1]))
		return nil

	case cmdSetEdgeProperty:
		edge, err := parseEdgeArgs(cmd, 0)
		if err != nil {
			return err
		}
		if len(cmd.Args) != 5 {
			return fmt.Errorf("%s: expected 5 args, got %d", cmd.Name, len(cmd.Args))
		}
		return e.store.SetEdgeProperty(edge, types.Identifier(cmd.Args[3]), types.Value(cmd.Args[4]))

	case cmdDelEdgeProperty:
		edge, err := parseEdgeArgs(cmd, 0)
		if err != nil {
			return err
		}
		if len(cmd.Args) != 4 {
			return fmt.Errorf("%s: expected 4 args, got %d", cmd.Name, len(cmd.Args))
		}
		e.store.DeleteEdgeProperty(edge, types.Identifier(cmd.Args[3]))
		return nil

	case cmdIndexVertexProp:
		if len(cmd.Args) != 1 {
			return fmt.Errorf("%s: expected 1 arg, got %d", cmd.Name, len(cmd.Args))
		}
		e.store.IndexVertexProperty(types.Identifier(cmd.Args[0]))
		return nil

	case cmdIndexEdgeProp:
		if len(cmd.Args) != 1 {
			return fmt.Errorf("%s: expected 1 arg, got %d", cmd.Name, len(cmd.Args))
		}
		e.store.IndexEdgeProperty(types.Identifier(cmd.Args[0]))
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd.Name)
	}
}

func parseUUIDArg(cmd *persistence.Command, i int) (uuid.UUID, error) {
	if len(cmd.Args) <= i {
		return uuid.Nil, fmt.Errorf("%s: missing argument %d", cmd.Name, i)
	}
	id, err := uuid.Parse(string(cmd.Args[i]))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: bad identity: %w", cmd.Name, err)
	}
	return id, nil
}

// parseEdgeArgs reads the (outbound, type, inbound) triple starting at
// argument i.
func parseEdgeArgs(cmd *persistence.Command, i int) (types.Edge, error) {
	if len(cmd.Args) < i+3 {
		return types.Edge{}, fmt.Errorf("%s: expected edge triple, got %d args", cmd.Name, len(cmd.Args))
	}
	out, err := uuid.Parse(string(cmd.Args[i]))
	if err != nil {
		return types.Edge{}, fmt.Errorf("%s: bad outbound identity: %w", cmd.Name, err)
	}
	in, err := uuid.Parse(string(cmd.Args[i+2]))
	if err != nil {
		return types.Edge{}, fmt.Errorf("%s: bad inbound identity: %w", cmd.Name, err)
	}
	return types.Edge{Outbound: out, T: types.Identifier(cmd.Args[i+1]), Inbound: in}, nil
}
