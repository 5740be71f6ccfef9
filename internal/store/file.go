package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/game"
)

// ErrInvalidSession is returned for session IDs that cannot name a file.
var ErrInvalidSession = errors.New("invalid session id")

// File stores each session's round as <dir>/<session>.json, written
// atomically.
type File struct {
	dir    string
	logger *log.Logger
}

var _ Store = (*File)(nil)

// NewFile creates the directory if needed and returns a store rooted there.
func NewFile(dir string, logger *log.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{dir: dir, logger: logger.WithPrefix("store")}, nil
}

func (f *File) path(session string) (string, error) {
	if !ValidSession(session) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, session)
	}
	return filepath.Join(f.dir, session+".json"), nil
}

func (f *File) LoadRound(session string) (*game.RoundState, error) {
	path, err := f.path(session)
	if err != nil {
		return nil, err
	}
	var state game.RoundState
	if err := fileutil.ReadJSON(path, &state); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, session)
		}
		return nil, err
	}
	return &state, nil
}

func (f *File) SaveRound(session string, state *game.RoundState) error {
	path, err := f.path(session)
	if err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(path, state, 0o600); err != nil {
		return err
	}
	f.logger.Debug("Saved round", "session", session, "round", state.ID, "state", state.Phase)
	return nil
}

func (f *File) ClearRound(session string) error {
	path, err := f.path(session)
	if err != nil {
		return err
	}
	return fileutil.RemoveIfExists(path)
}
