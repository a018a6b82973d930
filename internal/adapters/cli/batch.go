package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/devbush/compliancecheck/internal/adapters/cli/tui"
	"github.com/devbush/compliancecheck/internal/adapters/picker"
	"github.com/devbush/compliancecheck/internal/application"
	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	listFileFlag    string
	regulationFlag  string
	outputDirFlag   string
	formatFlag      string
	requireKeyFlag  bool
	csvFlag         bool
	interactiveFlag bool
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyze [files|dirs...]",
		Aliases: []string{"batch"},
		Short:   "Analyze call recordings for compliance",
		Long: `Upload call recordings one at a time to the compliance service and
report a verdict for each.

Provide audio files or folders as arguments and/or via a list file with
--file. Accepted formats are .mp3, .wav and .m4a.

Example:
  compliancecheck analyze call1.mp3 call2.wav
  compliancecheck analyze ./recordings --regulation "MiFID II" --csv
  compliancecheck analyze --file calls.txt --format table`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&listFileFlag, "file", "f", "", "File with paths (one per line)")
	cmd.Flags().StringVarP(&regulationFlag, "regulation", "r", "", "Regulation to check against")
	cmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for the CSV export")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: text, json, table")
	cmd.Flags().BoolVar(&requireKeyFlag, "require-key", false, "Refuse to start without an access key")
	cmd.Flags().BoolVar(&csvFlag, "csv", false, "Export results to CSV after the run")
	cmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "Choose which of the picked files to analyze")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	// Collect all paths from args and list file
	inputs, err := picker.CollectInputs(app.FS, args, listFileFlag)
	if err != nil {
		return fmt.Errorf("failed to read list file: %w", err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: pass audio files, folders or --file", domain.ErrNoFiles)
	}

	picked, err := app.Picker.Pick(inputs)
	if err != nil {
		return err
	}
	printRejections(errOut, picked.Rejected)

	files := picked.Accepted
	if interactiveFlag && len(files) > 1 {
		files, err = tui.RunFileSelect(files)
		if err != nil {
			return err
		}
		if files == nil {
			fmt.Fprintln(errOut, "Cancelled")
			return nil
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: none of the inputs can be uploaded", domain.ErrNoFiles)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return processBatch(ctx, app, files, out, errOut)
}

func processBatch(ctx context.Context, app *App, files []domain.SelectedFile, out, errOut io.Writer) error {
	progress := tui.NewBatchProgress(errOut, len(files), quietFlag, isTerminal(errOut))

	state, runErr := app.BatchSvc.RunBatch(ctx, files, application.BatchOptions{
		Regulation: app.Config.Defaults.Regulation,
		Credential: app.Config.API.AccessKey,
	}, progress)
	if state == nil {
		return runErr
	}

	if errors.Is(runErr, domain.ErrMissingCredential) {
		for _, e := range state.Errors {
			fmt.Fprintln(errOut, tui.FormatErrorLine(e))
		}
		return runErr
	}

	// Print completion summary
	progress.Complete()

	if err := writeResults(out, state, app.Config.Defaults.Format); err != nil {
		return err
	}

	if csvFlag {
		exportResults(app, state, errOut)
	}

	if runErr != nil {
		return runErr
	}
	if NewBatchSummary(state).HasFailures() {
		return errBatchFailed
	}
	return nil
}

// exportResults saves the CSV file; a failure is reported and added to the
// run's errors
func exportResults(app *App, state *domain.BatchState, errOut io.Writer) {
	path, err := app.ExportSvc.Export(state)
	switch {
	case errors.Is(err, domain.ErrNoResults):
		fmt.Fprintln(errOut, "No results to export")
	case err != nil:
		fmt.Fprintln(errOut, tui.FormatErrorLine(state.Errors[len(state.Errors)-1]))
	default:
		fmt.Fprintf(errOut, "Results saved to %s\n", path)
	}
}

func printRejections(w io.Writer, rejected []domain.Rejection) {
	if len(rejected) == 0 {
		return
	}
	fmt.Fprintf(w, "Skipping %d file(s):\n", len(rejected))
	for _, r := range rejected {
		fmt.Fprintf(w, "  ✗ %s: %s\n", r.FileName, r.Reason)
	}
	fmt.Fprintln(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
