package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/farheen-shaikh530/releasehub/internal/llm"
	"github.com/farheen-shaikh530/releasehub/internal/model"
	"github.com/farheen-shaikh530/releasehub/internal/orchestrator"
)

var (
	askDebug       bool
	askJSON        bool
	askLLM         bool
	askLLMProvider string
	askLLMModel    string
	askTimeout     time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a release question from the fact store",
	Long: `Ask detects the vendor and intent of a question, gathers facts or
evidence sentences, verifies them and prints a short answer with citations.
When the evidence is insufficient the answer is an abstention.

Run "releasehub ingest" and "releasehub build" first.

Example:
  releasehub ask "what is the latest version of kubernetes?"
  releasehub ask "latest android version 2025-01-15" --debug
  releasehub ask "latest docker release" --llm --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askDebug, "debug", false, "include the per-query trace")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", time.Minute, "overall query timeout")

	// LLM flags
	askCmd.Flags().BoolVar(&askLLM, "llm", false, "rephrase verified answers with an LLM")
	askCmd.Flags().StringVar(&askLLMProvider, "llm-provider", "", "LLM provider (openai, ollama; default: llm.provider or openai)")
	askCmd.Flags().StringVar(&askLLMModel, "llm-model", "", "LLM model name")
}

// newOrchestrator wires both strategies over the app's store and feeds
func newOrchestrator(a *app, rephraser orchestrator.Rephraser, debug bool) *orchestrator.Orchestrator {
	log := a.log.Named("orchestrator")
	osStrategy := orchestrator.NewOSVersionStrategy(a.vendors, a.client, orchestrator.OSFeeds{
		ComponentURL: a.cfg.Feeds.ComponentURL,
		ComponentTTL: a.cfg.Cache.ComponentTTL,
		RedditURL:    a.cfg.Feeds.RedditURL,
		RedditTTL:    a.cfg.Cache.RedditTTL,
	}, log)
	generic := orchestrator.NewGenericStrategy(orchestrator.GenericConfig{
		Vendors:       a.vendors,
		Facts:         a.store,
		Sentences:     a.store,
		Feeds:         a.client,
		ComponentURL:  a.cfg.Feeds.ComponentURL,
		ComponentTTL:  a.cfg.Cache.ComponentTTL,
		EvidenceLimit: a.cfg.Limits.EvidenceLimit,
		Logger:        log,
	})
	return orchestrator.New([]orchestrator.Strategy{osStrategy, generic}, orchestrator.Options{
		Logger:    log,
		Metrics:   a.metrics,
		Rephraser: rephraser,
		Debug:     debug,
	})
}

// newRephraser returns nil when no provider is configured
func newRephraser(a *app) (orchestrator.Rephraser, error) {
	llmCfg := a.cfg.LLM
	if askLLMProvider != "" {
		llmCfg.Provider = askLLMProvider
	}
	if llmCfg.Provider == "" {
		llmCfg.Provider = "openai"
	}
	if askLLMModel != "" {
		llmCfg.Model = askLLMModel
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(llmCfg, a.cfg.HTTP), a.log.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return llm.NewRephraser(provider, a.log.Named("llm")), nil
}

func runAsk(cmd *cobra.Command, args []string) (err error) {
	query := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
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

	var rephraser orchestrator.Rephraser
	if askLLM {
		// the rephraser is optional: without a provider the deterministic text stays
		r, rErr := newRephraser(a)
		if rErr != nil {
			a.log.Warnw("LLM rephrasing disabled", "error", rErr)
		} else {
			rephraser = r
		}
	}

	answer, err := newOrchestrator(a, rephraser, askDebug).Answer(ctx, query)
	if err != nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}
	return printAnswer(cmd.OutOrStdout(), answer)
}

// printAnswer renders an answer for the terminal
func printAnswer(w io.Writer, a *model.Answer) error {
	var b strings.Builder
	fmt.Fprintln(&b, a.ShortAnswer)
	fmt.Fprintf(&b, "\n%s\n", a.Meta)

	if len(a.Citations) > 0 {
		fmt.Fprintln(&b, "\nSources:")
		for i, c := range a.Citations {
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, c)
		}
	}
	if len(a.Evidence) > 0 {
		fmt.Fprintln(&b, "\nEvidence:")
		for _, ev := range a.Evidence {
			line := ev.Snippet
			if line == "" {
				line = ev.Title
			}
			fmt.Fprintf(&b, "  - %s", line)
			if ev.Date != "" {
				fmt.Fprintf(&b, " (%s)", ev.Date)
			}
			fmt.Fprintln(&b)
		}
	}
	if len(a.Debug) > 0 {
		trace, err := json.MarshalIndent(a.Debug, "  ", "  ")
		if err != nil {
			return fmt.Errorf("encode trace: %w", err)
		}
		fmt.Fprintf(&b, "\nTrace %s:\n  %s\n", a.TraceID, trace)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
