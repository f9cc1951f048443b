package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"transformline/internal/app"
	"transformline/internal/engine"
	"transformline/internal/orchestrator"
	"transformline/internal/report"
)

func transformCmd() *cobra.Command {
	t := &cobra.Command{
		Use:     "transform",
		Aliases: []string{"tx"},
		Short:   "Manage transformation plans",
		Long: `A transformation plan walks an organization through foundation, pilots, scaling and maturity.
Commands act on --plan, else TRANSFORMLINE_PLAN from the workspace .env (set with 'tl transform use'), else the only plan in the workspace.`,
	}
	t.AddCommand(transformInitCmd())
	t.AddCommand(transformListCmd())
	t.AddCommand(transformShowCmd())
	t.AddCommand(transformUseCmd())
	t.AddCommand(transformReadinessCmd())
	t.AddCommand(transformRoadmapCmd())
	t.AddCommand(transformProgressCmd())
	t.AddCommand(transformAdvanceCmd())
	t.AddCommand(transformTargetCmd())
	return t
}

func transformInitCmd() *cobra.Command {
	var name, industry, size, maturity, target string
	var use bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a transformation plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name required")
			}
			current, err := orchestrator.ParseMaturity(maturity)
			if err != nil {
				return err
			}
			var targetLevel orchestrator.MaturityLevel
			if target != "" {
				if targetLevel, err = orchestrator.ParseMaturity(target); err != nil {
					return err
				}
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				plan, err := e.InitTransformation(ctx, engine.TransformOptions{
					Profile: orchestrator.Profile{
						Name:            name,
						Industry:        industry,
						Size:            size,
						CurrentMaturity: current,
					},
					Target:  targetLevel,
					ActorID: viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				if use {
					if err := app.SetEnvValue(viper.GetString("workspace"), app.PlanEnvKey, plan.ID); err != nil {
						return err
					}
				}
				return printJSONOr(plan, func(w io.Writer) { report.Plan(w, plan) })
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "organization name")
	cmd.Flags().StringVar(&industry, "industry", "", "industry")
	cmd.Flags().StringVar(&size, "size", "medium", "organization size (small, medium, large, enterprise)")
	cmd.Flags().StringVar(&maturity, "maturity", "1", "current maturity, 1-5 or ADHOC..NATIVE")
	cmd.Flags().StringVar(&target, "target", "", "target maturity (defaults to INTEGRATED)")
	cmd.Flags().BoolVar(&use, "use", false, "make the new plan the workspace's current plan")
	return cmd
}

func transformListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transformation plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				plans, err := e.ListPlans(ctx)
				if err != nil {
					return err
				}
				return printJSONOr(plans, func(w io.Writer) { report.Plans(w, plans) })
			})
		},
	}
}

func transformShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show a transformation plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlan(cmd.Context(), func(ctx context.Context, e *engine.Engine, planID string) error {
				plan, err := e.GetPlan(ctx, planID)
				if err != nil {
					return err
				}
				return printJSONOr(plan, func(w io.Writer) { report.Plan(w, plan) })
			})
		},
	}
}

func transformUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Set the current plan for this workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID := strings.TrimSpace(args[0])
			if planID == "" {
				return fmt.Errorf("plan id is required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if _, err := e.GetPlan(ctx, planID); err != nil {
					return err
				}
				workspace := viper.GetString("workspace")
				if err := app.SetEnvValue(workspace, app.PlanEnvKey, planID); err != nil {
					return err
				}
				fmt.Printf("Set %s=%s in %s/.env\n", app.PlanEnvKey, planID, workspace)
				return nil
			})
		},
	}
}

func transformReadinessCmd() *cobra.Command {
	var assessmentID string
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Assess the plan's readiness",
		Long:  "Without --assessment the scores are baseline estimates from the organization's maturity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlan(cmd.Context(), func(ctx context.Context, e *engine.Engine, planID string) error {
				r, err := e.AssessTransformation(ctx, planID, assessmentID, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOr(r, func(w io.Writer) {
					fmt.Fprintf(w, "AI readiness:          %.2f\n", r.AIReadiness)
					fmt.Fprintf(w, "Stakeholder alignment: %.2f\n", r.StakeholderAlignment)
					fmt.Fprintf(w, "Change readiness:      %.2f\n", r.ChangeReadiness)
					fmt.Fprintf(w, "Technical readiness:   %.2f\n", r.TechnicalReadiness)
				})
			})
		},
	}
	cmd.Flags().StringVar(&assessmentID, "assessment", "", "derive scores from a stored assessment")
	return cmd
}

func transformRoadmapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roadmap",
		Short: "Show the phased roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlan(cmd.Context(), func(ctx context.Context, e *engine.Engine, planID string) error {
				phases, err := e.Roadmap(ctx, planID)
				if err != nil {
					return err
				}
				return printJSONOr(phases, func(w io.Writer) { report.Roadmap(w, phases) })
			})
		},
	}
}

func transformProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Track progress, metrics and risks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlan(cmd.Context(), func(ctx context.Context, e *engine.Engine, planID string) error {
				p, err := e.Progress(ctx, planID)
				if err != nil {
					return err
				}
				return printJSONOr(p, func(w io.Writer) { report.Progress(w, p) })
			})
		},
	}
}

func transformAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Move the plan into its next phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPlan(cmd.Context(), func(ctx context.Context, e *engine.Engine, planID string) error {
				plan, err := e.Advance(ctx, planID, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOr(plan, func(w io.Writer) {
					fmt.Fprintf(w, "%s is now in the %s phase (%.0f%% complete)\n",
						plan.ID, plan.CurrentPhase, plan.CurrentPhase.Completion())
				})
			})
		},
	}
}

func transformTargetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "target <level>",
		Short: "Change the target maturity level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := orchestrator.ParseMaturity(args[0])
			if err != nil {
				return err
			}
			return withPlan(cmd.Context(), func(ctx context.Context, e *engine.Engine, planID string) error {
				plan, err := e.SetTarget(ctx, planID, level, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOr(plan, func(w io.Writer) { report.Plan(w, plan) })
			})
		},
	}
}
