package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"transformline/internal/app"
	"transformline/internal/businesscase"
	"transformline/internal/config"
	"transformline/internal/db"
	"transformline/internal/domain"
	"transformline/internal/engine"
	"transformline/internal/report"
	"transformline/internal/server"
)

var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "tl",
	Short: "Transformline CLI",
	Long: `Transformline models AI transformation programs for consulting engagements.
Core concepts:
- Projection: multi-year cash flows from cost and benefit items, with NPV, ROI, payback and IRR.
- Assessment: an eight-dimension readiness questionnaire scored 1-5 into maturity levels, gaps and a development roadmap.
- Business case: investments, benefits, risks and scenarios generated from an organization profile and budget, plus an executive deck.
- Transformation: a plan moving through foundation, pilots, scaling and maturity toward a target maturity level.
- Workspace: the .transformline directory holding the database; transformline.yml overrides the built-in tables.
- Event log: every stored assessment, case and plan change, view with 'tl log tail'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if err := app.LoadEnv(workspace); err != nil {
			return err
		}
		level, err := zerolog.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TRANSFORMLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-user", "actor identifier")
	rootCmd.PersistentFlags().String("plan", "", "transformation id (overrides TRANSFORMLINE_PLAN)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
	_ = viper.BindPFlag("plan", rootCmd.PersistentFlags().Lookup("plan"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(assessCmd())
	rootCmd.AddCommand(caseCmd())
	rootCmd.AddCommand(transformCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(serveCmd())
}

func projectCmd() *cobra.Command {
	var file string
	var rate float64
	var horizon int
	var sensitivity bool
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project cash flows from a cost/benefit file",
		Long:  "Reads costs, benefits and optional discount_rate, horizon_years and sweep from a YAML or JSON file ('-' for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req engine.ProjectionRequest
			if err := readInput(file, &req); err != nil {
				return err
			}
			if cmd.Flags().Changed("rate") {
				req.DiscountRate = &rate
			}
			if cmd.Flags().Changed("horizon") {
				req.HorizonYears = horizon
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if sensitivity {
					r, err := e.Sensitivity(req)
					if err != nil {
						return err
					}
					return printJSONOr(r, func(w io.Writer) { report.Sensitivity(w, r) })
				}
				p, err := e.Project(req)
				if err != nil {
					return err
				}
				return printJSONOr(p, func(w io.Writer) { report.Projection(w, p) })
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "projection input file")
	cmd.Flags().Float64Var(&rate, "rate", 0, "discount rate (overrides file and config)")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "horizon in years (overrides file and config)")
	cmd.Flags().BoolVar(&sensitivity, "sensitivity", false, "run scenario and sweep analysis instead")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func assessCmd() *cobra.Command {
	var org, industry, answersFile, format string
	var answers map[string]int
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a readiness questionnaire",
		Long:  "Answers are 1-5 keyed by question key (see 'tl assess questions'); unanswered questions score 3.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if org == "" {
				return fmt.Errorf("--org required")
			}
			responses := map[string]int{}
			if answersFile != "" {
				if err := readInput(answersFile, &responses); err != nil {
					return err
				}
			}
			for k, v := range answers {
				responses[k] = v
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				a, err := e.Assess(ctx, engine.AssessOptions{
					Organization: org,
					Industry:     industry,
					Responses:    responses,
					ActorID:      viper.GetString("actor-id"),
				})
				if err != nil {
					return err
				}
				return printAssessment(a, format)
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization name")
	cmd.Flags().StringVar(&industry, "industry", "", "industry for benchmarks")
	cmd.Flags().StringVar(&answersFile, "answers", "", "YAML or JSON file of answers")
	cmd.Flags().StringToIntVar(&answers, "answer", nil, "answer as key=score, repeatable")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, markdown, html")
	cmd.AddCommand(assessQuestionsCmd())
	cmd.AddCommand(assessListCmd())
	cmd.AddCommand(assessShowCmd())
	return cmd
}

func assessQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List questionnaire keys and scoring guides",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				qs := e.Assessor.Questions()
				return printJSONOr(qs, func(w io.Writer) {
					for _, q := range qs {
						fmt.Fprintf(w, "%s (weight %.2f)\n  %s\n", q.Key, q.Weight, q.Text)
						for score := 1; score <= 5; score++ {
							if guide, ok := q.ScoringGuide[score]; ok {
								fmt.Fprintf(w, "    %d: %s\n", score, guide)
							}
						}
					}
				})
			})
		},
	}
}

func assessListCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored assessments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				items, err := e.ListAssessments(ctx, n)
				if err != nil {
					return err
				}
				return printJSONOr(items, func(w io.Writer) { report.Assessments(w, items) })
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of assessments")
	return cmd
}

func assessShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				a, err := e.GetAssessment(ctx, args[0])
				if err != nil {
					return err
				}
				return printAssessment(a, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, markdown, html")
	return cmd
}

func printAssessment(a engine.Assessment, format string) error {
	if viper.GetBool("json") {
		return printJSON(a)
	}
	switch format {
	case "", "table":
		fmt.Printf("Assessment %s\n", a.ID)
		report.Assessment(os.Stdout, a.Report)
		return nil
	case "markdown", "md":
		fmt.Print(report.AssessmentMarkdown(a.Report))
		return nil
	case "html":
		page, err := report.HTML("AI Readiness: "+a.Report.Organization, report.AssessmentMarkdown(a.Report))
		if err != nil {
			return err
		}
		fmt.Print(page)
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func caseCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "case",
		Short: "Business cases",
		Long:  "Generate, list and present AI investment business cases. Generated cases are stored in the workspace.",
	}
	c.AddCommand(caseGenerateCmd())
	c.AddCommand(caseListCmd())
	c.AddCommand(casePresentCmd())
	c.AddCommand(caseSensitivityCmd())
	return c
}

func caseGenerateCmd() *cobra.Command {
	var file, format, out string
	var attach bool
	var req businesscase.Request
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a business case",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				var fromFile businesscase.Request
				if err := readInput(file, &fromFile); err != nil {
					return err
				}
				mergeRequest(&fromFile, req, cmd)
				req = fromFile
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				opts := engine.CaseOptions{Request: req, ActorID: viper.GetString("actor-id")}
				if attach {
					planID, err := app.ResolvePlan(ctx, viper.GetString("plan"), e.Plans)
					if err != nil {
						return err
					}
					opts.PlanID = planID
				}
				sc, err := e.GenerateCase(ctx, opts)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(sc)
				}
				return writeCase(e, sc.ID, sc.Case, format, out)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON request file")
	cmd.Flags().StringVar(&req.Organization, "org", "", "organization name")
	cmd.Flags().StringVar(&req.Initiative, "initiative", "", "initiative name")
	cmd.Flags().StringVar(&req.Industry, "industry", "", "industry")
	cmd.Flags().StringVar(&req.Size, "size", "", "organization size (small, medium, large, enterprise)")
	cmd.Flags().Float64Var(&req.Budget, "budget", 0, "investment budget")
	cmd.Flags().StringArrayVar(&req.Objectives, "objective", nil, "strategic objective, repeatable")
	cmd.Flags().StringArrayVar(&req.Challenges, "challenge", nil, "current challenge, repeatable")
	cmd.Flags().BoolVar(&attach, "attach", false, "attach the case to the current transformation")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, markdown, html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to a file")
	return cmd
}

// mergeRequest lets explicit flags override a request file.
func mergeRequest(dst *businesscase.Request, flags businesscase.Request, cmd *cobra.Command) {
	if cmd.Flags().Changed("org") {
		dst.Organization = flags.Organization
	}
	if cmd.Flags().Changed("initiative") {
		dst.Initiative = flags.Initiative
	}
	if cmd.Flags().Changed("industry") {
		dst.Industry = flags.Industry
	}
	if cmd.Flags().Changed("size") {
		dst.Size = flags.Size
	}
	if cmd.Flags().Changed("budget") {
		dst.Budget = flags.Budget
	}
	if cmd.Flags().Changed("objective") {
		dst.Objectives = flags.Objectives
	}
	if cmd.Flags().Changed("challenge") {
		dst.Challenges = flags.Challenges
	}
}

func caseListCmd() *cobra.Command {
	var n int
	var planOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored business cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				var planID string
				if planOnly {
					id, err := app.ResolvePlan(ctx, viper.GetString("plan"), e.Plans)
					if err != nil {
						return err
					}
					planID = id
				}
				items, err := e.ListCases(ctx, planID, n)
				if err != nil {
					return err
				}
				return printJSONOr(items, func(w io.Writer) { report.Cases(w, items) })
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of cases")
	cmd.Flags().BoolVar(&planOnly, "for-plan", false, "only cases attached to the current transformation")
	return cmd
}

func casePresentCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "present <id>",
		Short: "Render a stored case as an executive presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				c, err := e.GetCase(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(e.Cases.Presentation(c))
				}
				return writeCase(e, args[0], c, format, out)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: table, markdown, html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to a file")
	return cmd
}

func caseSensitivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sensitivity <id>",
		Short: "Scenario and sweep analysis of a stored case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				r, err := e.CaseSensitivity(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOr(r, func(w io.Writer) { report.Sensitivity(w, r) })
			})
		},
	}
}

func writeCase(e *engine.Engine, id string, c businesscase.Case, format, out string) error {
	w := io.Writer(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch format {
	case "", "table":
		fmt.Fprintf(w, "Business case %s: %s for %s\n", id, c.Initiative, c.Organization)
		report.Projection(w, c.Projection)
		fmt.Fprintf(w, "Recommendation: %s (confidence %.0f%%)\n", c.Recommendation, c.Confidence*100)
	case "markdown", "md":
		fmt.Fprint(w, report.CaseMarkdown(c, e.Cases.Presentation(c)))
	case "html":
		p := e.Cases.Presentation(c)
		page, err := report.HTML(p.Title.Title, report.CaseMarkdown(c, p))
		if err != nil {
			return err
		}
		fmt.Fprint(w, page)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if out != "" {
		fmt.Printf("Wrote %s\n", out)
	}
	return nil
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
		Long:  "transformline.yml overrides the built-in finance defaults and the industry, size and risk tables. Entries it names replace the built-in entry whole.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cfg)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default transformline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate transformline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Load(viper.GetString("workspace"))
			if viper.GetBool("json") {
				if err != nil {
					return printJSON(map[string]any{"ok": false, "error": err.Error()})
				}
				return printJSON(map[string]any{"ok": true})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "Everything stored in the workspace: assessments, business cases, plan initialization, readiness updates, phase advances and retargets.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				events, err := e.ListEvents(ctx, domain.EventFilter{
					Type:       evtType,
					EntityKind: entityKind,
					EntityID:   entityID,
					Limit:      n,
				})
				if err != nil {
					return err
				}
				return printJSONOr(events, func(w io.Writer) { report.Events(w, events) })
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind (transformation, assessment, business_case)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var roles []string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Long:  "Signs an HS256 token with TRANSFORMLINE_JWT_SECRET (or --jwt-secret).",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := viper.GetString("jwt-secret")
			if secret == "" {
				return fmt.Errorf("TRANSFORMLINE_JWT_SECRET or --jwt-secret required")
			}
			if subject == "" {
				subject = viper.GetString("actor-id")
			}
			token, err := server.IssueToken(secret, subject, roles, ttl)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"token": token, "subject": subject, "expires_in": ttl.String()})
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (defaults to --actor-id)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role claim, repeatable")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().String("jwt-secret", "", "signing secret")
	_ = viper.BindPFlag("jwt-secret", cmd.Flags().Lookup("jwt-secret"))
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		Long:  "Serves the API over the workspace database. Bearer auth is enabled when TRANSFORMLINE_JWT_SECRET is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				authCfg := server.AuthConfig{JWTSecret: viper.GetString("jwt-secret")}
				if authCfg.JWTSecret == "" {
					logger.Warn().Msg("TRANSFORMLINE_JWT_SECRET not set; API is unauthenticated")
				}
				handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg, Logger: logger})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving Transformline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at %s/docs)\n", addr, basePath, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, *engine.Engine) error) error {
	e, err := app.OpenEngine(ctx, viper.GetString("workspace"), logger)
	if err != nil {
		return err
	}
	defer e.DB.Close()
	return fn(ctx, e)
}

// withPlan resolves the transformation a command targets before calling fn.
func withPlan(ctx context.Context, fn func(context.Context, *engine.Engine, string) error) error {
	return withEngine(ctx, func(ctx context.Context, e *engine.Engine) error {
		planID, err := app.ResolvePlan(ctx, viper.GetString("plan"), e.Plans)
		if err != nil {
			return err
		}
		return fn(ctx, e, planID)
	})
}

// readInput decodes a YAML or JSON file, or stdin for "-".
func readInput(path string, v any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSONOr(v any, render func(io.Writer)) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	render(os.Stdout)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
