package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Read commands from stdin, one per line",
		Long: `Starts a line-oriented session. A line starting with '<', '(', '$', '[' or '{'
is taken as Narsese input and a bare number as a cycle count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.Context())
		},
	}
}

func (a *app) runShell(ctx context.Context) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	s, closeSession, err := a.newSession(a.out, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	fmt.Fprintln(a.out, "narsvm ready. Type HLP for commands, EXI to quit.")
	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.Execute(line)
		if s.Terminated() {
			break
		}
	}
	fmt.Fprintln(a.out)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file>",
		Short: "Run a file of commands and print the outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open batch file: %w", err)
			}
			defer f.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			s, closeSession, err := a.newSession(a.out, nil)
			if err != nil {
				return err
			}
			defer closeSession()

			if err := s.Run(ctx, f); err != nil {
				return err
			}
			a.logger.Info("batch finished",
				zap.String("file", args[0]),
				zap.Int64("clock", s.Reasoner().Clock()),
				zap.Bool("terminated", s.Terminated()),
			)
			return nil
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
