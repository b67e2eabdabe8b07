package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inkwell/internal/app"
	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/session"
)

// cli holds what every command needs. Fields set before Execute are used
// as-is and left open afterwards.
type cli struct {
	cfg  *config.Config
	log  zerolog.Logger
	core *app.App
	slot session.Slot
	mgr  *session.Manager

	sessionDir string
	jsonOut    bool
	closers    []func() error
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "inkctl",
		Short:         "Read, react to and publish Inkwell articles from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.sessionDir, "session-dir", "", "directory of the saved session (default $SESSION_DIR)")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newLoginCmd(c),
		newSignupCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newFeedCmd(c),
		newReadCmd(c),
		newThreadCmd(c),
		newReactCmd(c, "like", "Like or unlike an article"),
		newReactCmd(c, "bookmark", "Bookmark or unbookmark an article"),
		newCommentCmd(c),
		newCommentLikeCmd(c),
		newPublishCmd(c),
		newImportCmd(c),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		c.cfg = cfg
		// 命令行默认只输出警告
		level := "warn"
		if cfg.Log.Level == "debug" {
			level = "debug"
		}
		c.log = logger.NewWithWriter(os.Stderr, level, true)
	}
	if c.core == nil {
		core, err := app.Build(ctx, c.cfg, c.log)
		if err != nil {
			return err
		}
		c.core = core
		c.closers = append(c.closers, core.Close)
	}
	if c.slot == nil {
		dir := c.sessionDir
		if dir == "" {
			dir = c.cfg.Session.Dir
		}
		slot, err := session.OpenBadgerSlot(dir, c.log)
		if err != nil {
			return err
		}
		c.slot = slot
		c.closers = append(c.closers, slot.Close)
	}
	c.mgr = session.NewManager(c.slot, c.core.Auth, c.log)
	c.mgr.Restore(ctx)
	return nil
}

// execute runs root and then releases whatever open acquired. cobra skips
// post-run hooks when a command fails, so closing happens here.
func execute(ctx context.Context, root *cobra.Command, c *cli) error {
	err := root.ExecuteContext(ctx)
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func (c *cli) close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// printJSON writes v when --json is set and reports whether it did.
func (c *cli) printJSON(w io.Writer, v interface{}) (bool, error) {
	if !c.jsonOut {
		return false, nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func requireArg(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one %s", name)
		}
		return nil
	}
}
