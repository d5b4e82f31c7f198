package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/wellspring-backend/internal/guidance/engine"
	"github.com/yungbote/wellspring-backend/internal/guidance/history"
)

type options struct {
	mode   string
	day    int64
	asJSON bool
	repeat int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "guidectl",
		Short:         "Run the rules-based guidance engine locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.mode, "mode", engine.ModeJournal, "journal or prompt")
	root.PersistentFlags().Int64Var(&opts.day, "day", -1, "fixed day index (days since epoch); -1 uses today")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")

	compose := &cobra.Command{
		Use:   "compose [text]",
		Short: "Compose guidance for text (reads stdin when no argument is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			return runCompose(cmd.Context(), cmd.OutOrStdout(), opts, text)
		},
	}
	compose.Flags().IntVar(&opts.repeat, "repeat", 1, "compose the same text n times against one history")

	signals := &cobra.Command{
		Use:   "signals [text]",
		Short: "Print the mood, stressors and risk flags detected in text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			return runSignals(cmd.OutOrStdout(), opts, text)
		},
	}

	root.AddCommand(compose, signals)
	return root
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func (o *options) clock() func() time.Time {
	if o.day < 0 {
		return time.Now
	}
	at := time.Unix(o.day*86400, 0).UTC()
	return func() time.Time { return at }
}

func (o *options) validate() error {
	switch o.mode {
	case "", engine.ModeJournal, engine.ModePrompt:
	default:
		return fmt.Errorf("unknown mode %q (want journal or prompt)", o.mode)
	}
	if o.repeat < 1 {
		return errors.New("--repeat must be at least 1")
	}
	return nil
}

func runCompose(ctx context.Context, w io.Writer, o *options, text string) error {
	if err := o.validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c := engine.New(engine.Options{History: history.NewRing(history.DefaultCapacity), Now: o.clock()})
	for i := 0; i < o.repeat; i++ {
		res := c.Compose(ctx, text, o.mode)
		if err := printResult(w, o, res); err != nil {
			return err
		}
	}
	return nil
}

func printResult(w io.Writer, o *options, res engine.Result) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(w, res.Guidance)
	fmt.Fprintf(w, "\nsummary: %s\n", res.Summary)
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	for _, q := range res.Questions {
		fmt.Fprintf(w, "  ? %s\n", q)
	}
	return nil
}

func runSignals(w io.Writer, o *options, text string) error {
	if err := o.validate(); err != nil {
		return err
	}
	a := engine.New(engine.Options{Now: o.clock()}).Analyze(text, o.mode)
	if o.asJSON {
		return json.NewEncoder(w).Encode(a.Signals)
	}
	stressors := "none"
	if len(a.Signals.Stressors) > 0 {
		stressors = strings.Join(a.Signals.Stressors, ", ")
	}
	risk := "none"
	if a.Signals.HasRisk() {
		risk = strings.Join(a.Signals.RiskFlags, ", ")
	}
	fmt.Fprintf(w, "mood: %s\nstressors: %s\nrisk: %s\nseed: %d\n", a.Signals.Mood, stressors, risk, a.Seed)
	return nil
}
