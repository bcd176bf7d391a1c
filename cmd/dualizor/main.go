// Command dualizor is a sample embedding application: it composes a
// small set of commands, queries, and notifications, wires the
// built-in behaviors, and dispatches a few messages. The dispatch
// engine itself carries no CLI surface; this binary only demonstrates
// how a host application embeds it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dualizor/dualizor/internal/config"
	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/behaviors"
	"github.com/dualizor/dualizor/pkg/dualizor"
	"github.com/dualizor/dualizor/pkg/types"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// CreateGreeting is a sample command producing a greeting string
type CreateGreeting struct {
	types.CommandTag
	Name string
}

// CountGreetings is a sample query over the demo state
type CountGreetings struct {
	types.QueryTag
}

// GreetingCreated is broadcast after every successful CreateGreeting
type GreetingCreated struct {
	types.NotificationTag
	Greeting string
}

var rootCmd = &cobra.Command{
	Use:   "dualizor",
	Short: "Dualizor demo - in-process request dispatch with behaviors",
	Long: `Demo host application for the dualizor dispatch engine. Composes a
catalog with a command, a query, and a notification handler, wires the
built-in recovery and logging behaviors, and dispatches sample messages.`,
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	opts, err := dualizor.OptionsFromConfig(cfg.Dispatch)
	if err != nil {
		return err
	}
	opts.Logger = log

	recovery, err := behaviors.NewRecovery(log)
	if err != nil {
		return err
	}
	logging, err := behaviors.NewLogging(log)
	if err != nil {
		return err
	}
	dualizor.RegisterBehavior(opts, "recovery", behaviors.OrderRecovery, recovery)
	dualizor.RegisterBehavior(opts, "logging", behaviors.OrderLogging, logging)

	var greetings int

	dualizor.RegisterHandlerFunc(opts, "create_greeting",
		func(ctx context.Context, c CreateGreeting) (string, error) {
			greetings++
			return "hello, " + c.Name, nil
		})
	dualizor.RegisterHandlerFunc(opts, "count_greetings",
		func(ctx context.Context, q CountGreetings) (int, error) {
			return greetings, nil
		})
	dualizor.RegisterNotificationFunc(opts, "greeting_audit",
		func(ctx context.Context, n GreetingCreated) error {
			log.Info("Greeting created", "greeting", n.Greeting)
			return nil
		})

	d, err := dualizor.New(opts)
	if err != nil {
		return fmt.Errorf("composition failed: %w", err)
	}

	ctx := context.Background()

	for _, name := range args {
		greeting, err := dualizor.Send[string](ctx, d, CreateGreeting{Name: name})
		if err != nil {
			return err
		}
		fmt.Println(greeting)

		if err := d.Publish(ctx, GreetingCreated{Greeting: greeting}); err != nil {
			return err
		}
	}

	count, err := dualizor.Send[int](ctx, d, CountGreetings{})
	if err != nil {
		return err
	}
	fmt.Printf("greetings created: %d\n", count)

	return nil
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	// CLI flags override file and environment values
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, cfg.Validate()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
