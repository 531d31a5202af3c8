package chartserver

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/stlalpha/cpdisp/internal/backend"
	"github.com/stlalpha/cpdisp/internal/chart"
	"github.com/stlalpha/cpdisp/internal/config"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/render"
)

// errMapFileName rejects mapping file paths that leave the data directory.
var errMapFileName = errors.New("mapping files are given by name")

func (s *Server) handleSession(sess ssh.Session) {
	id := uuid.New()
	args := sess.Command()
	if len(args) > 0 && args[0] == "cpdisp" {
		args = args[1:]
	}
	logging.Info("session %s: %s from %s: %q", id, sess.User(), sess.RemoteAddr(), args)

	code := s.run(sess, args)
	logging.Debug("session %s: exit %d", id, code)
	if err := sess.Exit(code); err != nil {
		logging.Debug("session %s: exit status not sent: %v", id, err)
	}
}

func (s *Server) run(sess ssh.Session, args []string) int {
	stderr := sess.Stderr()

	c, err := config.ParseRemoteArgs(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var (
		w     io.Writer = sess
		in    render.LineReader
		width = chart.DefaultListWidth
	)
	if ptyReq, winCh, isPty := sess.Pty(); isPty {
		t := term.NewTerminal(sess, "")
		t.SetSize(ptyReq.Window.Width, ptyReq.Window.Height)
		go func() {
			for win := range winCh {
				t.SetSize(win.Width, win.Height)
			}
		}()
		w, in, width = t, t, ptyReq.Window.Width
	} else {
		in = render.NewLineReader(sess)
	}

	switch {
	case c.Help:
		config.WriteHelp(w)
		return 0
	case c.List:
		chart.WriteNames(w, backend.Names(), width)
		return 0
	}
	if err := s.restrict(&c); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := chart.Run(sess.Context(), c, w, in); err != nil {
		if sess.Context().Err() == nil {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	return 0
}

// restrict confines a session to the server's data directory.
func (s *Server) restrict(c *config.Chart) error {
	c.DataPath = s.dataPath
	c.Watch = false
	if c.Backend != backend.KindMapFile {
		return nil
	}
	if s.dataPath == "" || filepath.Base(c.Ident) != c.Ident || c.Ident == ".." {
		return fmt.Errorf("%w: %s", errMapFileName, c.Ident)
	}
	c.Ident = filepath.Join(s.dataPath, c.Ident)
	return nil
}
