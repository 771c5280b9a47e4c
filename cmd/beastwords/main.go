package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/n2code/beastwords"
	"github.com/n2code/beastwords/cmd/beastwords/flags"
	"github.com/n2code/beastwords/internal"
	"github.com/n2code/beastwords/internal/config"
	"github.com/n2code/beastwords/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CliRequest struct {
	verbose    bool
	quiet      bool
	configPath string
	partitions string
	force      bool
	glyph      string

	settings *config.Config
	logger   *zap.Logger
	out      io.Writer
	errOut   io.Writer
}

const partitionsUsage = "regroup the words first: a partition COUNT, or size RANGES like 1-2,3-5"

func newRootCommand(rq *CliRequest) *cobra.Command {
	root := &cobra.Command{
		Use:   "beastwords",
		Short: "Split the words of a BEAUti document into partitions",
		Long: `beastwords rewrites a BEAST 2 document with a single tree likelihood into one
with a tree likelihood per partition. Partitions are the words encoded in the
character names (hand_1, hand_2, eye_1, ...), optionally regrouped by -p.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rq.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rq.sync()
		},
	}
	root.SetOut(rq.out)
	root.SetErr(rq.errOut)
	root.SetFlagErrorFunc(withUsageHint)

	persistent := root.PersistentFlags()
	persistent.BoolVarP(&rq.verbose, flags.Verbose, flags.VerboseShort, false, "Output more details on what is done (verbose mode)")
	persistent.BoolVarP(&rq.quiet, flags.Quiet, flags.QuietShort, false, "Output as little as possible, i.e. only requested information (quiet mode)")
	persistent.StringVar(&rq.configPath, flags.Config, "", "settings file (default: ./beastwords.yaml, then beastwords/config.yaml in the user config directory)")
	internal.AssertNoError(root.MarkPersistentFlagFilename(flags.Config, "yaml", "yml"), "the flag is defined right above")

	convert := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Write the document with one tree likelihood per partition",
		Long: `Convert the BEAUti document INPUT and write the result to OUTPUT.
OUTPUT must not exist unless -f is given. Use - as OUTPUT to write to stdout.`,
		Args: withArgsHint(cobra.ExactArgs(2)),
		RunE: rq.convert,
	}
	convert.Flags().StringVarP(&rq.partitions, flags.Partitions, flags.PartitionsShort, "", partitionsUsage)
	convert.Flags().BoolVarP(&rq.force, flags.Force, flags.ForceShort, false, "overwrite OUTPUT if it exists")

	sitedistr := &cobra.Command{
		Use:   "sitedistr INPUT",
		Short: "Print how many partitions there are of each size",
		Long: `Print a histogram of the partition sizes of INPUT, one line per size:
SIZE<TAB>COUNT<TAB>BAR`,
		Args: withArgsHint(cobra.ExactArgs(1)),
		RunE: rq.siteDistribution,
	}
	sitedistr.Flags().StringVarP(&rq.partitions, flags.Partitions, flags.PartitionsShort, "", partitionsUsage)
	sitedistr.Flags().StringVar(&rq.glyph, flags.Glyph, "", "bar character of the histogram (default from settings)")

	partitions := &cobra.Command{
		Use:   "partitions INPUT",
		Short: "Display the partitions of INPUT with their site ranges",
		Args:  withArgsHint(cobra.ExactArgs(1)),
		RunE:  rq.partitionTree,
	}
	partitions.Flags().StringVarP(&rq.partitions, flags.Partitions, flags.PartitionsShort, "", partitionsUsage)

	settings := &cobra.Command{
		Use:   "config [PATH]",
		Short: "Write the settings in effect to a YAML file",
		Long: `Write the settings in effect (defaults, settings file and BEASTWORDS_* variables) to PATH,
by default beastwords/config.yaml in the user config directory. PATH must not exist unless -f is given.`,
		Args: withArgsHint(cobra.MaximumNArgs(1)),
		RunE: rq.writeSettings,
	}
	settings.Flags().BoolVarP(&rq.force, flags.Force, flags.ForceShort, false, "overwrite PATH if it exists")

	root.AddCommand(convert, sitedistr, partitions, settings)
	return root
}

func withUsageHint(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w\nUsage help: %s -h", err, cmd.CommandPath())
}

func withArgsHint(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return withUsageHint(cmd, err)
		}
		return nil
	}
}

func (rq *CliRequest) setup() (err error) {
	if rq.verbose && rq.quiet {
		return errors.New("quiet mode and verbose mode are mutually exclusive")
	}
	_ = godotenv.Load()

	source := rq.configPath
	if source != "" {
		if _, statErr := os.Stat(source); statErr != nil {
			return fmt.Errorf("settings file unavailable: %w", statErr)
		}
		rq.settings, err = config.Load(source)
	} else {
		rq.settings, source, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("loading settings failed: %w", err)
	}
	if err := rq.settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	rq.logger, err = newLogger(rq.settings.Logging, rq.verbose, rq.quiet, rq.errOut)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	rq.logger.Debug("settings loaded", zap.String("path", source))
	return nil
}

func (rq *CliRequest) sync() {
	if rq.logger != nil {
		_ = rq.logger.Sync()
	}
}

// newLogger builds a console logger (JSON if configured) writing to sink. Verbose mode lowers the level to debug,
// quiet mode raises it to error.
func newLogger(settings config.LoggingConfig, verbose bool, quiet bool, sink io.Writer) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(settings.Level)
	if err != nil {
		return nil, err
	}
	switch {
	case verbose:
		level.SetLevel(zapcore.DebugLevel)
	case quiet:
		level.SetLevel(zapcore.ErrorLevel)
	}

	setup := zap.NewDevelopmentConfig()
	if settings.JSON {
		setup = zap.NewProductionConfig()
	}
	encoder := zapcore.NewConsoleEncoder(setup.EncoderConfig)
	if setup.Encoding == "json" {
		encoder = zapcore.NewJSONEncoder(setup.EncoderConfig)
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(sink), level)), nil
}

func (rq *CliRequest) open(path string) (beastwords.Converter, error) {
	var setup beastwords.CreateConfig
	if rq.verbose {
		setup.Verbosity = beastwords.VerboseMode
	}
	if rq.quiet {
		setup.Verbosity = beastwords.QuietMode
	}
	setup.Logger = rq.logger
	setup.Indent = rq.settings.Output.Indent
	setup.FancyTerminal = isTerminal(rq.out)
	setup.Out = rq.out

	conv, err := beastwords.Open(path, setup)
	if err != nil {
		return nil, err
	}
	spec := rq.partitions
	if spec == "" {
		spec = rq.settings.Convert.Partitions
	}
	if spec != "" {
		if err := conv.Repartition(spec); err != nil {
			return nil, err
		}
	}
	return conv, nil
}

func (rq *CliRequest) convert(cmd *cobra.Command, args []string) error {
	input, target := args[0], args[1]
	conv, err := rq.open(input)
	if err != nil {
		return err
	}
	if err := conv.Convert(); err != nil {
		return err
	}

	if target == flags.StandardStream {
		_, err := conv.WriteTo(rq.out)
		return err
	}
	if err := conv.SaveToFile(target, rq.force || rq.settings.Convert.Force); err != nil {
		return err
	}
	rq.logger.Info("converted document written", zap.String("input", input), zap.String("output", target))
	if !rq.quiet {
		conv.PrintPartitionTree()
	}
	return nil
}

func (rq *CliRequest) siteDistribution(cmd *cobra.Command, args []string) error {
	conv, err := rq.open(args[0])
	if err != nil {
		return err
	}
	glyph := rq.glyph
	if glyph == "" {
		glyph = rq.settings.Histogram.Glyph
	}
	conv.PrintSiteDistribution(glyph)
	return nil
}

func (rq *CliRequest) partitionTree(cmd *cobra.Command, args []string) error {
	conv, err := rq.open(args[0])
	if err != nil {
		return err
	}
	conv.PrintPartitionTree()
	return nil
}

func (rq *CliRequest) writeSettings(cmd *cobra.Command, args []string) (err error) {
	var target string
	if len(args) == 1 {
		target = args[0]
	} else if target, err = config.UserPath(); err != nil {
		return fmt.Errorf("no user config directory: %w", err)
	}
	if !rq.force {
		if _, statErr := os.Stat(target); statErr == nil {
			return fmt.Errorf("settings file exists already (%s)", target)
		}
	}
	if err := config.Save(target, rq.settings); err != nil {
		return fmt.Errorf("saving settings failed: %w", err)
	}
	rq.logger.Info("settings written", zap.String("path", target))
	if !rq.quiet {
		fmt.Fprintf(rq.out, "settings written to %s\n", target)
	}
	return nil
}

func run(args []string, out io.Writer, errOut io.Writer) (exitCode int) {
	rq := &CliRequest{out: out, errOut: errOut}
	root := newRootCommand(rq)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		rq.sync()
		message := err.Error()
		if isTerminal(errOut) {
			message = output.TerminalFormatAsError(message)
		}
		fmt.Fprintln(errOut, message)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
