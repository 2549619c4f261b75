package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/studywise/internal/llm"
	"github.com/abhisek/studywise/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

// openStore resolves the database path and opens the event store. The llm
// subcommands read events directly; none of them needs the engine or a
// provider.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No model calls recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tOK")
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			status := "ok"
			if !e.Success {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				status,
			)
		}
		return w.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		printBody("REQUEST", e.RequestBody)
		printBody("RESPONSE", e.ResponseBody)
		return nil
	},
}

func printBody(label, body string) {
	rule := strings.Repeat("─", 60)
	fmt.Println()
	fmt.Println(rule)
	fmt.Println(label)
	fmt.Println(rule)
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	fmt.Println(body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No model usage recorded yet.")
			return nil
		}

		fmt.Println("Usage by purpose")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PURPOSE\tCALLS\tIN\tOUT\tTOTAL\tAVG MS")
		var calls, in, out int
		for _, u := range byPurpose {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens,
				u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t%d\t\n", calls, in, out, in+out)
		if err := w.Flush(); err != nil {
			return err
		}

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Estimated cost (USD)")
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tCALLS\tIN\tOUT\tCOST")
		var total float64
		var unpriced []string
		for _, u := range byModel {
			cost := llm.LookupCost(u.Model)
			if cost == nil {
				unpriced = append(unpriced, u.Model)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t?\n",
					truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens)
				continue
			}
			c := cost.Cost(u.InputTokens, u.OutputTokens)
			total += c
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
				truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, formatCost(c))
		}
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(w, "%s\t\t\t\t%s\n", label, formatCost(total))
		if err := w.Flush(); err != nil {
			return err
		}

		if len(unpriced) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (learning-plan, lesson-content, tutor-chat, ...)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
