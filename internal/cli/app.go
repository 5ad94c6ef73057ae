package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/session"
	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/token"
)

// app is everything one command invocation needs, wired from config.
type app struct {
	cfg     *config.Config
	out     *OutputFormatter
	logger  *zap.Logger
	store   *session.Store
	manager *session.Manager
	client  *api.Client
	cart    *cart.Store
	deps    shop.Deps

	// loginURL is set when the session was invalidated during the command.
	// The first invalidation wins; the manager serialises the hook.
	loginURL string
}

// loadConfig resolves configuration and applies the global flags that were
// set explicitly.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: opts.ConfigPath, EnvFile: opts.EnvFile})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.BaseURL = opts.APIURL
	}
	if flags.Changed("session") {
		cfg.SessionPath = opts.SessionPath
	}
	if flags.Changed("format") {
		cfg.Format = opts.Format
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires the client, session and cart store. location is the path a
// forced logout should return to.
func newApp(opts *RootOptions, cmd *cobra.Command, location string) (*app, error) {
	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		out: &OutputFormatter{
			Format:  cfg.Format,
			Writer:  cmd.OutOrStdout(),
			Verbose: cfg.Verbose,
		},
		logger: newLogger(cfg.Verbose, cmd.ErrOrStderr()),
	}

	if dir := filepath.Dir(cfg.SessionPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}
	a.store, err = session.Open(cfg.SessionPath)
	if err != nil {
		return nil, err
	}

	a.manager = session.NewManager(a.store, token.NewValidator(),
		session.WithLogger(a.logger),
		session.WithRedirect(func(loc string) {
			if a.loginURL == "" {
				a.loginURL = loc
			}
		}),
	)

	a.client, err = api.New(cfg.API.BaseURL,
		api.WithLogger(a.logger),
		api.WithTimeout(cfg.GetTimeout()),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		a.store.Close()
		return nil, err
	}

	a.cart = cart.New(a.client, a.manager,
		cart.WithLogger(a.logger),
		cart.WithLocation(location),
	)
	a.cart.Subscribe(a.persistCart)

	a.deps = shop.Deps{
		Client:  a.client,
		Session: a.manager,
		Cart:    a.cart,
		Logger:  a.logger,
	}
	return a, nil
}

// persistCart writes every settled cart state to the session database so
// `cart show --cached` works offline.
func (a *app) persistCart(st cart.State) {
	if st.Loading || st.Status == cart.StatusErrored {
		return
	}
	if err := a.store.SaveCartSnapshot(context.Background(), st.Lines); err != nil {
		a.logger.Warn("save cart snapshot", zap.Error(err))
	}
}

func (a *app) close() {
	_ = a.logger.Sync()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close session database", zap.Error(err))
	}
}

// fail reports err through the formatter and converts it to an ExitError.
func (a *app) fail(err error) error {
	exit, code, details := classify(err)
	message := err.Error()
	if errors.Is(err, errSessionExpired) {
		message = errSessionExpired.Error()
	}
	if a.loginURL != "" {
		if a.out.Format == "json" {
			details = map[string]string{"login_url": a.loginURL}
		}
	}

	_ = a.out.Error(code, message, details)
	if a.loginURL != "" && a.out.Format != "json" {
		fmt.Fprintf(a.out.Writer, "Log in again: storefront login (resume at %s)\n", a.loginURL)
	}
	return WrapExitError(exit, code, err)
}

// run wires an app, runs fn and turns its outcome into output and an exit
// code. A command that completed while the session was invalidated still
// exits with ExitAuthRequired.
func run(opts *RootOptions, cmd *cobra.Command, location string, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(opts, cmd, location)
	if err != nil {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeInput, err)
	}
	defer a.close()

	err = fn(cmd.Context(), a)
	if err == nil && a.manager.Invalidated() {
		err = errSessionExpired
	}
	if err != nil {
		return a.fail(err)
	}
	return nil
}
