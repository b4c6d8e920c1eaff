package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"slices"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/runestream/internal/bql"
	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/diag"
	"github.com/zjrosen/runestream/internal/log"
	"github.com/zjrosen/runestream/internal/sourcecache"
	"github.com/zjrosen/runestream/internal/tracing"
	"github.com/zjrosen/runestream/internal/watcher"
)

var lexWatch bool

var lexCmd = &cobra.Command{
	Use:   "lex FILE...",
	Short: "Tokenize BQL files",
	Long: `Tokenize one or more BQL query files and print every token with its
line:column position. Columns count code points, so an emoji is one column.
Illegal tokens are reported on stderr with a caret under the offending text.

Files are lexed concurrently. With --watch, files are re-lexed whenever they
change until interrupted.

Examples:
  runestream lex queries/*.bql
  runestream lex --watch query.bql
  echo 'title ~ "😱"' | runestream lex -`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lexWatch && slices.Contains(args, "-") {
			return fmt.Errorf("--watch cannot be used with stdin")
		}

		cache := sourcecache.New(appFs, sourcecache.Config{
			Encoding: cfg.Input.Encoding,
			TTL:      cfg.Cache.TTL,
			Disabled: !cfg.Cache.Enabled,
		})
		load := func(ctx context.Context, path string) (*charstream.CharStream, error) {
			if path == "-" {
				return openStream(cmd, path)
			}
			return cache.Load(ctx, path)
		}

		ctx := cmd.Context()
		failed := printLexReports(cmd.OutOrStdout(), cmd.ErrOrStderr(), lexFiles(ctx, load, args))

		if !lexWatch {
			if failed > 0 {
				return fmt.Errorf("%d file(s) had errors", failed)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		err := watchAndLex(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), load, args)
		stats := cache.Stats()
		log.Debug(log.CatCache, "Cache stats", "hits", stats.Hits, "misses", stats.Misses)
		return err
	},
}

func init() {
	lexCmd.Flags().BoolVarP(&lexWatch, "watch", "w", false, "re-lex files when they change")
	rootCmd.AddCommand(lexCmd)
}

type loadFunc func(ctx context.Context, path string) (*charstream.CharStream, error)

// lexReport is the outcome of lexing one file.
type lexReport struct {
	order   int
	path    string
	tokens  []bql.Token
	lines   *diag.Lines
	illegal int
	syntax  *bql.SyntaxError
	err     error
}

// lexFiles lexes paths concurrently and returns reports in argument order.
func lexFiles(ctx context.Context, load loadFunc, paths []string) []lexReport {
	p := pool.NewWithResults[lexReport]().
		WithContext(ctx).
		WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		p.Go(func(ctx context.Context) (lexReport, error) {
			return lexFile(ctx, load, i, path), nil
		})
	}
	reports, _ := p.Wait()
	slices.SortFunc(reports, func(a, b lexReport) int { return a.order - b.order })
	return reports
}

func lexFile(ctx context.Context, load loadFunc, order int, path string) lexReport {
	report := lexReport{order: order, path: path}

	ctx, span := tracer.Start(ctx, tracing.SpanLoad,
		trace.WithAttributes(attribute.String(tracing.AttrSourceName, path)))
	defer span.End()

	cs, err := load(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		report.err = err
		return report
	}
	report.path = cs.SourceName()
	span.SetAttributes(tracing.SourceAttributes(cs.Source())...)

	// The parser reads a sibling cursor so both passes start at 0.
	if _, err := bql.NewStreamParser(cs.Fork()).Parse(); err != nil {
		errors.As(err, &report.syntax)
	}

	_, lexSpan := tracer.Start(ctx, tracing.SpanLex)
	report.tokens = bql.NewStreamLexer(cs).Tokenize()
	for _, tok := range report.tokens {
		if tok.Type == bql.TokenIllegal {
			report.illegal++
		}
	}
	report.lines = diag.NewLines(cs)
	lexSpan.SetAttributes(
		attribute.Int(tracing.AttrTokenCount, len(report.tokens)),
		attribute.Int(tracing.AttrIllegal, report.illegal),
	)
	lexSpan.End()

	log.Debug(log.CatLexer, "Lexed file", "path", path, "tokens", len(report.tokens), "illegal", report.illegal)
	return report
}

// printLexReports writes tokens to out and problems to errOut, returning the
// number of files that failed to load or contained illegal tokens.
func printLexReports(out, errOut io.Writer, reports []lexReport) int {
	failed := 0
	for _, r := range reports {
		if r.err != nil {
			fmt.Fprintf(errOut, "error: %v\n", r.err)
			failed++
			continue
		}
		for _, tok := range r.tokens {
			fmt.Fprintf(out, "%s:%s\t%s\n", r.path, r.lines.Locate(tok.Pos()), tok)
			if tok.Type == bql.TokenIllegal {
				fmt.Fprintf(errOut, "illegal token %q at %s\n", tok.Literal, r.lines.Caret(tok.Span))
			}
		}
		if r.illegal > 0 {
			failed++
		}
	}
	return failed
}

func watchAndLex(ctx context.Context, out, errOut io.Writer, load loadFunc, paths []string) error {
	w, err := watcher.New(watcher.Config{Paths: paths, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	log.Info(log.CatWatcher, "Watching files", "count", len(paths))
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-changes:
			if !ok {
				return nil
			}
			printLexReports(out, errOut, lexFiles(ctx, load, changed))
		}
	}
}
