// Command htmlunitd serves the embedded htmlunit browser over the W3C
// WebDriver protocol.
//
// Settings come from flags, from HTMLUNITD_* environment variables, or
// from a config file given with --config:
//
//	htmlunitd --port 4444 --url-base /wd/hub --javascript=false
package main

import (
	"context"
	"errors"
	goflag "flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/wanmail/htmlunit"
	"github.com/wanmail/htmlunit/server"
)

// config holds the resolved settings of one run.
type config struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	URLBase     string        `mapstructure:"url-base"`
	Javascript  bool          `mapstructure:"javascript"`
	UserAgent   string        `mapstructure:"user-agent"`
	HTTPTimeout time.Duration `mapstructure:"http-timeout"`
	AccessLog   bool          `mapstructure:"access-log"`
}

// newRootCmd builds the command. ready, when set, receives the service
// once it answers requests.
func newRootCmd(ready chan<- *server.Service) *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "htmlunitd",
		Short:         "Serve the htmlunit headless browser over WebDriver.",
		Version:       htmlunit.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (YAML, JSON or TOML)")
	addFlags(flags)
	flags.AddGoFlagSet(goflag.CommandLine)
	v := newViper(flags)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(v, cfgFile)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, cmd.ErrOrStderr(), ready)
	}
	return cmd
}

func addFlags(flags *pflag.FlagSet) {
	flags.String("host", "127.0.0.1", "interface to listen on")
	flags.Int("port", 4444, "port to listen on; 0 picks a free port")
	flags.String("url-base", "/wd/hub", "path prefix of the WebDriver endpoints")
	flags.Bool("javascript", true, "run page scripts when a session does not say")
	flags.String("user-agent", "", "User-Agent header of every session")
	flags.Duration("http-timeout", 0, "timeout of one page fetch; 0 means none")
	flags.Bool("access-log", false, "log every request to stderr")
}

// newViper binds the settings of flags and their HTMLUNITD_* environment
// variables.
func newViper(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			v.BindPFlag(f.Name, f)
		}
	})
	v.SetEnvPrefix("HTMLUNITD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig merges the config file, if any, under the environment and
// flags bound to v.
func loadConfig(v *viper.Viper, file string) (config, error) {
	var cfg config
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("port %d out of range", cfg.Port)
	}
	return cfg, nil
}

// run serves until ctx is done.
func run(ctx context.Context, cfg config, logOut io.Writer, ready chan<- *server.Service) error {
	var driverOpts []htmlunit.DriverOption
	if cfg.UserAgent != "" {
		driverOpts = append(driverOpts, htmlunit.WithUserAgent(cfg.UserAgent))
	}
	if cfg.HTTPTimeout > 0 {
		driverOpts = append(driverOpts, htmlunit.WithHTTPClientTimeout(cfg.HTTPTimeout))
	}
	opts := []server.Option{
		server.ListenHost(cfg.Host),
		server.URLPrefix(cfg.URLBase),
		server.JavascriptByDefault(cfg.Javascript),
		server.DriverOptions(driverOpts...),
	}
	if cfg.AccessLog {
		opts = append(opts, server.Output(logOut))
	}

	svc, err := server.NewService(cfg.Port, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(logOut, "htmlunitd %s listening on %s\n", htmlunit.Version, svc.Addr())
	if ready != nil {
		ready <- svc
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err := <-svc.Done():
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server stopped: %w", err)
		case <-ctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		glog.Info("htmlunitd shutting down")
		return svc.Stop()
	})
	return g.Wait()
}

func main() {
	defer glog.Flush()
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "htmlunitd:", err)
		os.Exit(1)
	}
}
