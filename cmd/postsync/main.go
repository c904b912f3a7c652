package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/recordkit/postsync/internal/adjust"
	"github.com/recordkit/postsync/internal/config"
	"github.com/recordkit/postsync/internal/discovery"
	"github.com/recordkit/postsync/internal/docs"
	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/logger"
	"github.com/recordkit/postsync/internal/postman"
	"github.com/recordkit/postsync/internal/schema"
	"github.com/recordkit/postsync/internal/service"
	"github.com/recordkit/postsync/internal/store"
	"github.com/recordkit/postsync/internal/syncer"
	"github.com/recordkit/postsync/internal/tui"
	tuimodels "github.com/recordkit/postsync/internal/tui/models"
)

func main() {
	Execute()
}

var (
	adjustmentsFile string
	moduleName      string
	docsOutput      string
	docsTitle       string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "postsync",
	Short: "Generate and sync REST endpoint collections from record type schemas",
	Long: `Postsync introspects record type schemas, generates CRUD and custom-method
endpoint collections, and keeps them in sync with a remote collection workspace.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&adjustmentsFile, "adjustments-file", "", "Path to the endpoint adjustments file")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	generateCmd.Flags().StringVar(&moduleName, "module", "", "Generate endpoints for every record type in a module")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Write the OpenAPI document to a file instead of stdout")
	docsCmd.Flags().StringVar(&docsTitle, "title", "Generated Record APIs", "Document title")

	envCmd.AddCommand(envCreateCmd)
	rootCmd.AddCommand(generateCmd, backfillCmd, syncCmd, validateCmd, envCmd, statusCmd, docsCmd, reviewCmd)
}

// deps collects everything commands pull out of the container.
type deps struct {
	fx.In

	Generator  *service.Generator
	Syncer     *syncer.Syncer
	Exporter   *docs.Exporter
	Store      *store.Store
	Adjuster   *adjust.Adjuster
	Provider   schema.Provider
	Discoverer *discovery.Discoverer
}

func newAdjuster() (*adjust.Adjuster, error) {
	a := adjust.NewAdjuster()
	if err := a.Load(adjustmentsFile); err != nil {
		return nil, fmt.Errorf("loading adjustments: %w", err)
	}
	return a, nil
}

// setup loads config, initializes logging, and populates the dependency
// container. Every command goes through here.
func setup(out *deps) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(newAdjuster),
		schema.Module,
		discovery.Module,
		postman.Module,
		store.Module,
		service.Module,
		syncer.Module,
		docs.Module,
		fx.Populate(out),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// maybeAutoSync runs a sync pass after generation when auto sync is on.
func maybeAutoSync(cfg *config.Config, d *deps) error {
	if !cfg.Remote.AutoSync {
		return nil
	}
	if err := cfg.ValidateRemote(); err != nil {
		pterm.Warning.Printfln("Auto sync skipped: %v", err)
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := d.Syncer.Sync(ctx)
	if err != nil {
		return err
	}
	pterm.Info.Println(result.Message)
	return nil
}

var generateCmd = &cobra.Command{
	Use:   "generate [record-type]",
	Short: "Generate endpoints for a record type or a whole module",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}

		switch {
		case moduleName != "":
			record, err := d.Generator.GenerateModule(moduleName)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Generated endpoints for module %s (%s)", moduleName, record.Description)

		case len(args) == 1:
			record, err := d.Generator.GenerateSingle(args[0])
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Generated endpoints for %s (record %s)", args[0], record.ID)

		default:
			return fmt.Errorf("either a record type argument or --module is required")
		}

		return maybeAutoSync(cfg, &d)
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate endpoints for every known record type that has none",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}

		created, err := d.Generator.Backfill()
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Backfilled %d record types", created)

		return maybeAutoSync(cfg, &d)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push all generated endpoint folders to the remote collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}
		if err := cfg.ValidateRemote(); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := d.Syncer.Sync(ctx)
		if err != nil {
			return err
		}
		pterm.Success.Println(result.Message)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check credentials and access to the remote workspace and collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}
		if err := cfg.ValidateRemote(); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result := d.Syncer.ValidateConnection(ctx)
		if result.Status != "success" {
			return fmt.Errorf("%s", result.Message)
		}
		pterm.Success.Println(result.Message)
		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage remote environments",
}

var envCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a remote environment with the site's variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}
		if err := cfg.ValidateRemote(); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		id, err := d.Syncer.CreateEnvironment(ctx)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Created environment %s", id)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration completeness and sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Configuration")
		for check, ok := range cfg.SetupChecks() {
			if ok {
				pterm.Success.Println(check)
			} else {
				pterm.Warning.Println(check)
			}
		}

		settings := d.Store.Settings()
		records := d.Store.Records()
		active := d.Store.ActiveRecords()

		pterm.DefaultSection.Println("Catalog")
		if names, err := d.Provider.ListAll(); err == nil {
			pterm.Info.Printfln("Record types: %d", len(names))
		}
		pterm.Info.Printfln("Discoverable custom methods: %d", d.Discoverer.CountAll())

		pterm.DefaultSection.Println("Sync state")
		pterm.Info.Printfln("Status: %s", settings.Status)
		if settings.LastSync.IsZero() {
			pterm.Info.Println("Last sync: never")
		} else {
			pterm.Info.Printfln("Last sync: %s", settings.LastSync.Format("2006-01-02 15:04:05 MST"))
		}
		pterm.Info.Printfln("Generation records: %d total, %d active", len(records), len(active))
		return nil
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Export the generated endpoints as an OpenAPI document",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d deps
		cfg, err := setup(&d)
		if err != nil {
			return err
		}

		data, err := d.Exporter.Export(docsTitle, cfg.Remote.BaseURL)
		if err != nil {
			return err
		}

		if docsOutput == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(docsOutput, data, 0o644); err != nil {
			return err
		}
		pterm.Success.Printfln("Wrote OpenAPI document to %s", docsOutput)
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively review generated endpoints and save adjustments",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() {
			if r := recover(); r != nil {
				pterm.Error.Printf("\nCaught panic: %v\n", r)
				pterm.Error.Printf("%s\n", debug.Stack())
				os.Exit(2)
			}
		}()

		var d deps
		if _, err := setup(&d); err != nil {
			return err
		}

		items, err := reviewItems(d.Store)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("no generated endpoints to review; run generate first")
		}

		if err := tui.Run(items, d.Adjuster); err != nil {
			return err
		}

		pterm.Info.Printfln("Review complete over %s endpoints.", pterm.White(len(items)))
		return nil
	},
}

// reviewItems flattens every active generation record into list items.
func reviewItems(st *store.Store) ([]tuimodels.EndpointItem, error) {
	var items []tuimodels.EndpointItem

	for _, record := range st.ActiveRecords() {
		switch record.Kind {
		case store.KindSingleType:
			var endpoints []endpoint.Descriptor
			if err := json.Unmarshal(record.Endpoints, &endpoints); err != nil {
				return nil, fmt.Errorf("record %s: %w", record.Target, err)
			}
			for _, desc := range endpoints {
				items = append(items, tuimodels.EndpointItem{Desc: desc, RecordType: record.Target})
			}

		case store.KindWholeModule:
			var all []service.TypeEndpoints
			if err := json.Unmarshal(record.Endpoints, &all); err != nil {
				return nil, fmt.Errorf("record %s: %w", record.Target, err)
			}
			for _, te := range all {
				for _, desc := range te.Endpoints {
					items = append(items, tuimodels.EndpointItem{Desc: desc, RecordType: te.RecordType})
				}
			}
		}
	}

	return items, nil
}
