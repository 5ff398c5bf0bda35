package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/fyrsmithlabs/interviewd/internal/extraction"
	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
	"github.com/fyrsmithlabs/interviewd/internal/store"
	"github.com/fyrsmithlabs/interviewd/internal/workflows"
)

var (
	flagCandidate        string
	flagCandidateEmail   string
	flagInterviewer      string
	flagInterviewerEmail string
	flagRecruiter        string
	flagRecruiterEmail   string
	flagDate             string
	flagMaxRounds        int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new interview scheduling negotiation",
	Long: `Start a new negotiation. When --date is given the interviewer is
emailed immediately; otherwise the workflow idles until "book".

Each negotiation round is one counter-proposal from either side. The
workflow cancels itself after 7 days or when the round ceiling is hit,
whichever comes first.

Examples:
  recruiterctl start --candidate "Asha Rao" --candidate-email asha@example.com \
      --interviewer "Vik Shah" --interviewer-email vik@example.com --date 2025-07-25

  # Tight negotiation, at most 3 rounds
  recruiterctl start ... --max-rounds 3`,
	RunE: runStart,
}

var bookCmd = &cobra.Command{
	Use:   "book <workflow-id>",
	Short: "Book the interview date for a running negotiation",
	Long: `Book the interview date. The date may be free text ("tomorrow",
"next week", "25-07-2025"); it is resolved the same way candidate
emails are.

Example:
  recruiterctl book interview-4f9c... --date tomorrow`,
	Args: cobra.ExactArgs(1),
	RunE: runBook,
}

var statusCmd = &cobra.Command{
	Use:   "status <workflow-id>",
	Short: "Show the live negotiation state",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List interviews known to the local store",
	RunE:  runList,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <workflow-id>",
	Short: "Cancel a running negotiation",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	startCmd.Flags().StringVar(&flagCandidate, "candidate", "", "candidate name (required)")
	startCmd.Flags().StringVar(&flagCandidateEmail, "candidate-email", "", "candidate email (required)")
	startCmd.Flags().StringVar(&flagInterviewer, "interviewer", "", "interviewer name (required)")
	startCmd.Flags().StringVar(&flagInterviewerEmail, "interviewer-email", "", "interviewer email (required)")
	startCmd.Flags().StringVar(&flagRecruiter, "recruiter", "System", "recruiter name")
	startCmd.Flags().StringVar(&flagRecruiterEmail, "recruiter-email", "", "recruiter email (defaults to the SMTP from address)")
	startCmd.Flags().StringVar(&flagDate, "date", "", "proposed interview date (free text accepted)")
	startCmd.Flags().IntVar(&flagMaxRounds, "max-rounds", negotiation.DefaultMaxRounds, "maximum negotiation rounds (1-20)")
	for _, required := range []string{"candidate", "candidate-email", "interviewer", "interviewer-email"} {
		_ = startCmd.MarkFlagRequired(required)
	}

	bookCmd.Flags().StringVar(&flagDate, "date", "", "interview date (required, free text accepted)")
	_ = bookCmd.MarkFlagRequired("date")
}

// resolveDate turns free-text date input into YYYY-MM-DD using the
// same extraction chain the reply monitor applies to candidate email.
func resolveDate(input string) string {
	ex := extraction.New(extraction.Config{})
	slot := ex.Extract(context.Background(), input, nil)
	return slot.Date
}

func runStart(cmd *cobra.Command, args []string) error {
	if flagMaxRounds < 1 || flagMaxRounds > 20 {
		return fmt.Errorf("--max-rounds must be between 1 and 20, got %d", flagMaxRounds)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	recruiterEmail := flagRecruiterEmail
	if recruiterEmail == "" {
		recruiterEmail = cfg.SMTP.From
	}

	proposedDate := ""
	if flagDate != "" {
		proposedDate = resolveDate(flagDate)
	}

	workflowID := fmt.Sprintf("interview-%s", uuid.NewString())
	input := workflows.SchedulingInput{
		InterviewID:  workflowID,
		Candidate:    negotiation.Party{Name: flagCandidate, Email: flagCandidateEmail},
		Interviewer:  negotiation.Party{Name: flagInterviewer, Email: flagInterviewerEmail},
		Recruiter:    negotiation.Party{Name: flagRecruiter, Email: recruiterEmail},
		ProposedDate: proposedDate,
		MaxRounds:    flagMaxRounds,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	we, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.InterviewSchedulingWorkflow, input)
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}

	fmt.Printf("Interview workflow started: %s\n", we.GetID())
	fmt.Printf("  Candidate:   %s (%s)\n", flagCandidate, flagCandidateEmail)
	fmt.Printf("  Interviewer: %s (%s)\n", flagInterviewer, flagInterviewerEmail)
	fmt.Printf("  Max rounds:  %d (times out after 7 days or %d rounds)\n", flagMaxRounds, flagMaxRounds)
	if proposedDate != "" {
		fmt.Printf("  Date:        %s\n", proposedDate)
	} else {
		fmt.Printf("\nNext: recruiterctl book %s --date <date>\n", we.GetID())
	}
	return nil
}

func runBook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	date := resolveDate(flagDate)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := c.SignalWorkflow(ctx, args[0], "", workflows.SignalRecruiterBookSlot, date); err != nil {
		return fmt.Errorf("book date: %w", err)
	}

	fmt.Printf("Date booked: %s\n", date)
	fmt.Println("The interviewer will be emailed for available slots on this date.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	resp, err := c.QueryWorkflow(ctx, args[0], "", workflows.QueryStatus)
	if err != nil {
		return fmt.Errorf("query workflow: %w", err)
	}

	var n negotiation.Negotiation
	if err := resp.Get(&n); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	out, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records := store.New(cfg.Store.Path).ListAll()
	if len(records) == 0 {
		fmt.Println("No interviews recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INTERVIEW ID\tCANDIDATE\tINTERVIEWER\tDATE\tSTATUS\tUPDATED")
	for _, rec := range records {
		date := rec.ProposedDate
		if rec.ScheduledSlot != nil {
			date = fmt.Sprintf("%s %s-%s", rec.ScheduledSlot.Date, rec.ScheduledSlot.StartTime, rec.ScheduledSlot.EndTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.InterviewID,
			rec.Candidate.Name,
			rec.Interviewer.Name,
			date,
			rec.Status,
			rec.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runCancel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := dial(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := c.SignalWorkflow(ctx, args[0], "", workflows.SignalCancel, nil); err != nil {
		return fmt.Errorf("cancel workflow: %w", err)
	}
	fmt.Printf("Cancellation requested for %s\n", args[0])
	return nil
}
