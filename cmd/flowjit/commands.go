package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/codestore"
	"github.com/randalmurphal/flowjit/pkg/flowjit/config"
	"github.com/randalmurphal/flowjit/pkg/flowjit/graphfile"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	configPath string
	opt        int
	storePath  string
	trace      bool
	metrics    bool

	settings config.Settings
	logger   *slog.Logger
	store    codestore.Store
	shutdown func(context.Context) error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "flowjit",
		Short:         "Compile dataflow graph files into callable functions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML or JSON settings file")
	flags.IntVar(&a.opt, "opt", 2, "optimization level (0 none, 1 fold, 2 full)")
	flags.StringVar(&a.storePath, "store", "", "SQLite file recording generated code")
	flags.BoolVar(&a.trace, "trace", false, "print OpenTelemetry spans to stdout")
	flags.BoolVar(&a.metrics, "metrics", false, "print OpenTelemetry metrics to stdout on exit")

	root.AddCommand(a.compileCmd(), a.runCmd(), a.dotCmd())
	return root
}

// setup merges the config file with the flags that were set explicitly
// and opens the telemetry pipeline and code store.
func (a *app) setup(cmd *cobra.Command) error {
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("opt") {
		if a.opt < 0 || a.opt > 2 {
			return fmt.Errorf("--opt must be 0, 1 or 2, got %d", a.opt)
		}
		s.OptLevel = a.opt
	}
	if flags.Changed("store") {
		s.CodeStorePath = a.storePath
	}
	s.Tracing = s.Tracing || a.trace
	s.Metrics = s.Metrics || a.metrics
	a.settings = s

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: s.LogLevel}))

	a.shutdown, err = setupTelemetry(cmd.OutOrStdout(), s.Tracing, s.Metrics)
	if err != nil {
		return err
	}

	if s.CodeStorePath != "" {
		store, err := codestore.NewSQLiteStore(s.CodeStorePath)
		if err != nil {
			return fmt.Errorf("open code store: %w", err)
		}
		a.store = store
	}
	return nil
}

// close releases what setup opened. It runs even when a command fails.
func (a *app) close(ctx context.Context) error {
	var first error
	if a.store != nil {
		first = a.store.Close()
		a.store = nil
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil && first == nil {
			first = err
		}
		a.shutdown = nil
	}
	return first
}

func (a *app) options() []flowjit.Option {
	opts := append(flowjit.OptionsFromSettings(a.settings), flowjit.WithLogger(a.logger))
	if a.store != nil {
		opts = append(opts, flowjit.WithCodeStore(a.store))
	}
	return opts
}

// compileContext applies the configured compile timeout.
func (a *app) compileContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.settings.CompileTimeout > 0 {
		return context.WithTimeout(ctx, a.settings.CompileTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *app) compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile graph files and print the generated code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs := make([]flowjit.Request, len(args))
			for i, path := range args {
				f, err := graphfile.ParseFile(path)
				if err != nil {
					return err
				}
				reqs[i] = flowjit.Request{Name: f.Name, Graph: f.Graph, Inputs: f.Inputs, Outputs: f.Outputs}
			}

			ctx, cancel := a.compileContext(cmd.Context())
			defer cancel()
			callables, err := flowjit.CompileAll(ctx, reqs, a.settings.Parallelism, a.options()...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, c := range callables {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "; %s (%s)\n", args[i], c.Key())
				io.WriteString(out, c.PrintCode())
				c.Release()
			}
			return nil
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE [ARG...]",
		Short: "Compile a graph file and call it with the given arguments",
		Long: "Arguments are parsed by the type of the matching graph input: " +
			"Integer and Float as numbers, Boolean as true/false, Vector and Color as comma separated components.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := graphfile.ParseFile(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := a.compileContext(cmd.Context())
			defer cancel()
			c, err := f.Compile(ctx, a.options()...)
			if err != nil {
				return err
			}
			defer c.Release()

			values, err := parseArgs(c.Inputs(), args[1:])
			if err != nil {
				return err
			}
			results, err := c.Call(values...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range results {
				fmt.Fprintf(out, "%s = %s\n", f.Graph.SocketName(f.Outputs.At(i)), formatValue(r))
			}
			return nil
		},
	}
}

func (a *app) dotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dot FILE",
		Short: "Print the nodes a graph file needs as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := graphfile.ParseFile(args[0])
			if err != nil {
				return err
			}
			dot, err := f.Graph.Dot(f.Inputs, f.Outputs)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), dot)
			return err
		},
	}
}
