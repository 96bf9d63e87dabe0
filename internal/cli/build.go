package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/farheen-shaikh530/releasehub/internal/extract"
	"github.com/farheen-shaikh530/releasehub/internal/store"
	"github.com/farheen-shaikh530/releasehub/internal/vendor"
)

var (
	buildTimeout time.Duration
	buildMatcher string
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Derive sentences and latest-version facts from the raw layer",
	Long: `Build runs the two derived stages in order: raw records are split into
sentences tagged with version tokens and allow-listed vendors, then the best
sentence per vendor becomes its latest-version fact.

Each stage builds once. A stage whose table already has rows is skipped;
delete the DuckDB file to rebuild from scratch.

Example:
  releasehub build
  releasehub build --matcher substring`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show layer row counts and stage states",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(statusCmd)

	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 5*time.Minute, "overall build timeout")
	buildCmd.Flags().StringVar(&buildMatcher, "matcher", "ngram", "vendor tagging strategy (ngram, substring)")
}

// newMatcher picks a vendor tagging strategy by name
func newMatcher(name string, allowed vendor.AllowList) (vendor.Matcher, error) {
	switch name {
	case "ngram", "":
		return vendor.NewNGram(allowed), nil
	case "substring":
		return vendor.NewSubstring(allowed), nil
	default:
		return nil, fmt.Errorf("unknown matcher %q (supported: ngram, substring)", name)
	}
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), buildTimeout)
	defer cancel()

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := a.close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	set := a.loadVendors(ctx)
	a.log.Infow("Vendor allow-list loaded", "origin", set.Origin, "vendors", len(set.Names))

	matcher, err := newMatcher(buildMatcher, set.Names)
	if err != nil {
		return err
	}
	ex := extract.NewExtractor(matcher, a.cfg.Limits.MaxSentencesPerItem)

	sentences, err := a.store.BuildSentences(ctx, ex)
	if err != nil {
		return fmt.Errorf("build sentences: %w", err)
	}
	report(cmd.ErrOrStderr(), sentences)

	facts, err := a.store.BuildFacts(ctx)
	if err != nil {
		return fmt.Errorf("build facts: %w", err)
	}
	report(cmd.ErrOrStderr(), facts)
	return nil
}

func report(w io.Writer, res store.StageResult) {
	if res.Skipped {
		fmt.Fprintf(w, "• %s: already built, skipped\n", res.Stage)
		return
	}
	fmt.Fprintf(w, "✓ %s: %d rows\n", res.Stage, res.Rows)
}

func runStatus(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := a.close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	counts, err := a.store.Counts(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tROWS\tSTATE\tUPDATED")
	fmt.Fprintf(w, "raw\t%d\t-\t-\n", counts.Raw)
	for _, layer := range []struct {
		stage string
		rows  int
	}{
		{store.StageSentences, counts.Sentences},
		{store.StageFacts, counts.Facts},
	} {
		st, err := a.store.Status(ctx, layer.stage)
		if err != nil {
			return err
		}
		updated := "-"
		if !st.UpdatedAt.IsZero() {
			updated = st.UpdatedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", layer.stage, layer.rows, st.State, updated)
	}
	fmt.Fprintf(w, "release_fact\t%d\t-\t-\n", counts.ReleaseFacts)
	return w.Flush()
}
