// Command smartace-translate is the translator's command-line surface
// (spec §6): given one or more parsed source files and a comma-separated
// bundle of contract names, it runs the full semantic-lowering pipeline
// and writes the generated model to stdout (or a --out file).
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/contract-ace/smartace-sub002/internal/buildinfo"
	"github.com/contract-ace/smartace-sub002/pkg/analysisstack"
	"github.com/contract-ace/smartace-sub002/pkg/codegen"
	"github.com/contract-ace/smartace-sub002/pkg/diag"
	"github.com/contract-ace/smartace-sub002/pkg/emit"
	"github.com/contract-ace/smartace-sub002/pkg/logging"
	"github.com/contract-ace/smartace-sub002/pkg/metrics"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smartace-translate <contract[,contract...]>",
	Short: "Translates a bundle of contracts into a model checker harness",
	Long: `smartace-translate runs the semantic-lowering pipeline over a set of
parsed source files and a user-selected bundle of deployable contracts,
and emits a self-contained imperative model suitable for bounded model
checking and symbolic execution.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringSlice("source", nil, "parsed source unit file(s) handed off by the frontend")
	rootCmd.Flags().String("out", "", "output file for the generated model (default: stdout)")
	rootCmd.Flags().Bool("forward-declare", false, "emit record and function forward declarations only; bodies are omitted")
	rootCmd.Flags().Int("map-k", 0, "key alphabet size for map lowering (0: unbounded); accepted but not read by the generator")
	rootCmd.Flags().Bool("lockstep-time", false, "advance block.timestamp and block.number together under a single step variable")
	rootCmd.Flags().Bool("add-sums", false, "numeric-sum fields in lowered records; accepted but not read by the generator")
	rootCmd.Flags().Bool("strict-bundle", false, "treat unresolved bundle names as fatal instead of warning and continuing with the resolved subset")
	rootCmd.Flags().Bool("debug", false, "enable debug-level logging")
	rootCmd.Flags().Bool("human-log", false, "use a human-readable console log instead of structured JSON")
	rootCmd.Flags().String("metrics-addr", "", "if set, serve pipeline summary metrics on this address (e.g. :9090) until the process exits")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("translation failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps the translator's error strata (spec §7, spec §5 CLI
// surface) onto process exit codes: 1 for a rejected language construct,
// 2 for an internal invariant violation, 3 for --strict-bundle turning
// unresolved bundle names fatal, 2 for anything else unclassified.
func exitCode(err error) int {
	var unsupported diag.ErrUnsupportedFeature
	if errors.As(err, &unsupported) {
		return 1
	}
	var missing diag.ErrBundleMissing
	if errors.As(err, &missing) {
		return 3
	}
	return 2
}

func run(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	human, _ := cmd.Flags().GetBool("human-log")
	logging.SetupLogger(buildinfo.Version, debug, human)

	bundleNames := splitBundle(args[0])
	if len(bundleNames) == 0 {
		return fmt.Errorf("empty bundle: nothing to translate")
	}

	sourcePaths, _ := cmd.Flags().GetStringSlice("source")
	units, err := loadSourceUnits(sourcePaths)
	if err != nil {
		return err
	}

	stack, result, err := analysisstack.Build(units, bundleNames)
	if err != nil {
		return classify(err)
	}
	if len(result.Missing) > 0 {
		strict, _ := cmd.Flags().GetBool("strict-bundle")
		if strict {
			return diag.ErrBundleMissing{Names: result.Missing}
		}
		log.Warn().Strs("missing", result.Missing).Msg("bundle names not found; continuing with the resolved subset")
	}

	forwardDeclareOnly, _ := cmd.Flags().GetBool("forward-declare")
	mapK, _ := cmd.Flags().GetInt("map-k")
	lockstep, _ := cmd.Flags().GetBool("lockstep-time")
	addSums, _ := cmd.Flags().GetBool("add-sums")
	opts := codegen.Options{
		ForwardDeclareOnly: forwardDeclareOnly,
		MapK:               mapK,
		LockstepTime:       lockstep,
		AddSums:            addSums,
	}

	var model bytes.Buffer
	if err := codegen.Generate(emit.New(&model), stack, opts); err != nil {
		return classify(err)
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(model.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		metrics.Record(metrics.FromStack(stack))
		if err := metrics.SetupInstrumentation(addr, "smartace-translate"); err != nil {
			return fmt.Errorf("starting metrics endpoint: %w", err)
		}
		log.Info().Str("addr", addr).Msg("serving pipeline summary metrics until interrupted")
		waitForSignal()
	}
	return nil
}

// waitForSignal blocks until the process receives SIGINT or SIGTERM, so a
// scraper has a window to read the just-completed run's summary metrics
// before the process exits.
func waitForSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}

// splitBundle parses the positional comma-separated bundle argument,
// trimming incidental whitespace and dropping empty entries a trailing
// comma would otherwise produce.
func splitBundle(arg string) []string {
	var names []string
	for _, n := range strings.Split(arg, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// classify wraps an error from the translator's strata (spec §7) with a
// message naming its stratum; exitCode later derives the process exit
// code from the wrapped type. Unsupported-feature and internal errors are
// both hard failures from the CLI's point of view, but the distinct Go type lets a
// caller embedding this package with errors.As tell them apart. An
// ErrInternal means an earlier pass's own invariants were violated, not
// a problem with the input, so it's captured with pkg/errors.WithStack
// before it reaches the log — the only stratum worth a stack trace.
func classify(err error) error {
	var unsupported diag.ErrUnsupportedFeature
	if errors.As(err, &unsupported) {
		return fmt.Errorf("unsupported language feature: %w", err)
	}
	var internal diag.ErrInternal
	if errors.As(err, &internal) {
		return fmt.Errorf("translation error: %w", pkgerrors.WithStack(err))
	}
	return fmt.Errorf("translation error: %w", err)
}
