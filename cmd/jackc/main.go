// Command jackc compiles Jack source files to Hack VM code, optionally
// also emitting the token stream and parse tree as XML.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/khvorov45/jackc/internal/compiler"
	"github.com/khvorov45/jackc/internal/walker"
)

// ConfigError reports an invalid flag combination or value, distinct
// from a per-file IoError or parse error so the exit code can single it
// out.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.msg }

func configErr(format string, args ...any) error {
	return errors.WithStack(&ConfigError{msg: fmt.Sprintf(format, args...)})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbosity string
		depth     int
		tokens    bool
		tree      bool
		noVM      bool
	)

	cmd := &cobra.Command{
		Use:           "jackc [path ...]",
		Short:         "Compile Jack source files to Hack VM code",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbosity)

			if verbosity != "minimal" && verbosity != "full" {
				return configErr("invalid --verbosity %q: want %q or %q", verbosity, "minimal", "full")
			}
			if depth < 0 {
				return configErr("invalid --depth %d: must be >= 0", depth)
			}

			opts := compiler.Options{EmitTokens: tokens, EmitTree: tree, EmitVM: !noVM}

			var files []string
			for _, path := range args {
				found, err := walker.Collect(path, depth)
				if err != nil {
					return err
				}
				files = append(files, found...)
			}

			failed := 0
			for _, file := range files {
				logger.Info("compiling", "file", file)
				res, err := compiler.CompileFile(file, opts)
				if err != nil {
					var ioErr *compiler.IoError
					if errors.As(err, &ioErr) {
						return err
					}
					// Per-file UnexpectedToken/UndefinedSymbol: report and
					// keep going; the count only feeds the stderr summary,
					// the exit code stays zero.
					logger.Error("compile failed", "file", file, "err", err.Error())
					failed++
					continue
				}
				logger.Info("compiled", "file", file, "tokens", res.TokensPath, "tree", res.TreePath, "vm", res.VMPath)
			}

			if failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d file(s) failed to compile\n", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&verbosity, "verbosity", "minimal", `output verbosity: "minimal" or "full"`)
	cmd.Flags().IntVar(&depth, "depth", 0, "directory recursion depth (0 = immediate entries only)")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "also emit the <file>T.xml token stream")
	cmd.Flags().BoolVar(&tree, "tree", false, "also emit the <file>.xml parse tree")
	cmd.Flags().BoolVar(&noVM, "no-vm", false, "suppress <file>.vm output")

	return cmd
}

func newLogger(verbosity string) *slog.Logger {
	level := slog.LevelWarn
	if verbosity == "full" {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
