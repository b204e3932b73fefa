package service

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"inkwell/app/logger"

	"github.com/spf13/cobra"
)

// Version is the CLI version, overridable at link time.
var Version = "1.0.0"

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

// NewRootCommand builds the inkwell command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "inkwell",
		Short:        "A server-rendered blog front-end for a JSON posts API",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "optional dotenv file")
	root.PersistentFlags().String("db-path", "", "Badger directory for users and sessions (env DB_PATH)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	root.PersistentFlags().String("log-format", "", "text or json (env LOG_FORMAT)")
	root.PersistentFlags().String("log-file", "", "write logs to a rotating file (env LOG_FILE)")

	root.AddCommand(
		newServeCommand(),
		newUsersCommand(),
		newDBCommand(),
		newVersionCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "listen address (env ADDR)")
	cmd.Flags().String("api-url", "", "base URL of the posts API (env API_BASE_URL)")
	cmd.Flags().Duration("api-timeout", 0, "timeout for each API request (env API_TIMEOUT)")
	cmd.Flags().Duration("revalidate", 0, "how long the post listing is cached (env REVALIDATE)")
	cmd.Flags().Duration("session-ttl", 0, "session lifetime, 0 keeps sessions until logout (env SESSION_TTL)")
	cmd.Flags().Duration("redirect-delay", 0, "delay before redirecting after login or signup (env REDIRECT_DELAY)")
	cmd.Flags().Bool("cookie-secure", false, "mark the session cookie Secure (env COOKIE_SECURE)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Serving on http://%s", app.Addr())
	return app.Run(ctx)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkwell version %s\n", Version)
		},
	}
}
