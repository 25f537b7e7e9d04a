package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/config"
	"example.com/ai-travel-planner/internal/database"
	"example.com/ai-travel-planner/internal/models"
)

// errPlanRejected сигнализирует, что ответ не удалось превратить в план.
var errPlanRejected = errors.New("plan rejected")

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Travel itinerary tooling",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log generation trace events")

	root.AddCommand(newNormalizeCommand(), newGenerateCommand(), newMigrateCommand())
	return root
}

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a raw model response into a canonical plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				input = file
			}

			text, err := io.ReadAll(input)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			plan, err := ai.ParsePlan(string(text))
			if err != nil {
				return reportFailure(cmd, err)
			}

			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
}

type generateFlags struct {
	from      string
	to        string
	persona   string
	budget    int64
	days      int
	interests []string
}

func newGenerateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an itinerary with the configured AI provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := flags.userInput()
			if err != nil {
				return err
			}

			cfg, err := config.LoadAI()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			client, err := ai.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			if closer, ok := client.(io.Closer); ok {
				defer closer.Close()
			}

			service := ai.NewService(client, cfg.Provider, slog.Default())
			plan, _, _, err := service.GeneratePlan(ctx, input)
			if err != nil {
				return reportFailure(cmd, err)
			}

			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "departure city")
	cmd.Flags().StringVar(&flags.to, "to", "", "destination city")
	cmd.Flags().StringVar(&flags.persona, "persona", string(models.PersonaSolo), "trip type: Solo, Bachelor, Couple, Friends, Family")
	cmd.Flags().Int64Var(&flags.budget, "budget", 0, "total budget in rupees")
	cmd.Flags().IntVar(&flags.days, "days", 0, "trip duration in days")
	cmd.Flags().StringSliceVar(&flags.interests, "interest", nil, "interest, repeatable")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (f generateFlags) userInput() (models.UserInput, error) {
	input := models.UserInput{
		FromCity: strings.TrimSpace(f.from),
		ToCity:   strings.TrimSpace(f.to),
		TripType: models.Persona(strings.TrimSpace(f.persona)),
		Budget:   f.budget,
		Duration: f.days,
	}
	for _, interest := range f.interests {
		input.Interests = append(input.Interests, models.Interest(strings.TrimSpace(interest)))
	}

	if err := validator.New().Struct(input); err != nil {
		return input, fmt.Errorf("invalid trip parameters: %w", err)
	}

	return input, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func reportFailure(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", ai.ErrorKind(err), err)
	return errPlanRejected
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
