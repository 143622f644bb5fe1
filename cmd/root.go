package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"prodfmt/internal/app"
)

const version = "1.0.0"

type fmtFlags struct {
	configArg       string
	outputArg       string
	concurrencyArg  int
	logFileArg      string
	verboseArg      bool
	noCategorizeArg bool
}

func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(normalizeArgs(os.Args[1:]))
	return root.Execute()
}

func NewRootCmd(stdout, stderr *os.File) *cobra.Command {
	flags := &fmtFlags{}
	showVersion := false

	root := &cobra.Command{
		Use:           "prodfmt [file_or_dir ...]",
		Short:         "Reformat raw product listings into Discord-ready Markdown",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFmt(stdout, stderr, flags, &showVersion),
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true
	bindFmtFlags(root, flags)
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version")

	fmtCmd := &cobra.Command{
		Use:           "fmt [file_or_dir ...]",
		Short:         "Format listing files (or stdin when no paths are given)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFmt(stdout, stderr, flags, &showVersion),
	}
	root.AddCommand(fmtCmd)

	versionCmd := &cobra.Command{
		Use:           "version",
		Short:         "print version",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func bindFmtFlags(cmd *cobra.Command, flags *fmtFlags) {
	cmd.PersistentFlags().StringVar(&flags.configArg, "config", "", "config file path, default ~/.prodfmt/config.yaml")
	cmd.PersistentFlags().StringVarP(&flags.outputArg, "out", "o", "", "output file or directory, default stdout")
	cmd.PersistentFlags().IntVar(&flags.concurrencyArg, "concurrency", 0, "parallel blocks per input")
	cmd.PersistentFlags().StringVar(&flags.logFileArg, "log-file", "", "NDJSON log file path")
	cmd.PersistentFlags().BoolVar(&flags.verboseArg, "verbose", false, "emit debug-level NDJSON events")
	cmd.PersistentFlags().BoolVar(&flags.noCategorizeArg, "no-categorize", false, "skip the categorization side-call")
}

func runFmt(stdout, stderr *os.File, flags *fmtFlags, showVersion *bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if showVersion != nil && *showVersion {
			printVersion(stdout)
			return nil
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working dir: %w", err)
		}

		res, err := app.Run(app.Options{
			Inputs:       args,
			ConfigPath:   flags.configArg,
			OutputPath:   flags.outputArg,
			Concurrency:  flags.concurrencyArg,
			LogFile:      flags.logFileArg,
			Verbose:      flags.verboseArg,
			NoCategorize: flags.noCategorizeArg,
			CWD:          cwd,
			Stdout:       stdout,
			Stderr:       stderr,
			Stdin:        os.Stdin,
		})
		if err != nil {
			return err
		}
		if res.Failed > 0 {
			return fmt.Errorf("formatted %d block(s), %d input(s) failed", res.Blocks, res.Failed)
		}
		return nil
	}
}

func printVersion(stdout *os.File) {
	fmt.Fprintf(stdout, "prodfmt %s\n", version)
}

func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	switch args[0] {
	case "fmt", "help", "completion", "version":
		return args
	}
	if args[0] == "-h" || args[0] == "--help" || args[0] == "-v" || args[0] == "--version" {
		return args
	}
	if !containsPositionalSource(args) {
		return args
	}
	return append([]string{"fmt"}, args...)
}

func containsPositionalSource(args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return i+1 < len(args)
		}
		switch arg {
		case "--config", "--out", "-o", "--concurrency", "--log-file":
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "--out=") || strings.HasPrefix(arg, "--concurrency=") || strings.HasPrefix(arg, "--log-file=") {
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return true
	}
	return false
}
