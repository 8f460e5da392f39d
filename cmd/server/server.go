package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/wholesale-storefront/api"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/config"
	"github.com/irsalhamdi/wholesale-storefront/core/auth"
	"github.com/irsalhamdi/wholesale-storefront/core/cart"
	"github.com/irsalhamdi/wholesale-storefront/core/catalog"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/gate"
	"github.com/irsalhamdi/wholesale-storefront/rate"
	"github.com/irsalhamdi/wholesale-storefront/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "STOREFRONT"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.Secure = cfg.Session.Secure

	st, closeStorage, err := openStorage(cfg, sessionManager, logger)
	if err != nil {
		return fmt.Errorf("opening cart storage: %w", err)
	}
	defer closeStorage()

	be, err := openBackend(cfg.Backend, logger)
	if err != nil {
		return fmt.Errorf("building backend client: %w", err)
	}

	lookup := func(ctx context.Context, id claims.Identity) (bool, error) {
		return be.IsCallerAdmin(ctx)
	}
	registry := gate.NewRegistry(lookup, cfg.Gate.LookupLimit, cfg.Gate.IdleExpiry, logger)
	defer registry.Close()

	orderLimiter := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, rate.Every(cfg.Rate.Interval))
	defer orderLimiter.Close()
	claimLimiter := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, rate.Every(cfg.Rate.Interval))
	defer claimLimiter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Oauth.DiscoveryTimeout)
	defer cancel()
	idp := cfg.Oauth.Identity
	oauthProvs, err := auth.MakeProviders(ctx, []auth.ProviderConfig{
		{Name: "identity", Client: idp.Client, Secret: idp.Secret, URL: idp.URL, RedirectURL: idp.RedirectURL},
	})
	if err != nil {
		return fmt.Errorf("failed to discover oauth providers: %w", err)
	}
	if len(oauthProvs) == 0 && !cfg.Auth.DevLogin {
		logger.Warn("no identity provider configured, admin sign-in is unavailable")
	}

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		Session:    sessionManager,
		Storage:    st,
		Backend:    be,
		Catalog:    catalog.NewReader(be, cfg.Backend.Timeout),
		Sessions: gate.Sessions{
			Registry:  registry,
			Key:       gate.SessionKey(storage.SessionScope(sessionManager)),
			LoginPath: cfg.Oauth.LoginRedirectURL,
			GuardWait: cfg.Gate.GuardWait,
		},
		OrderLimiter:     orderLimiter,
		ClaimLimiter:     claimLimiter,
		Providers:        oauthProvs,
		LoginRedirectURL: cfg.Oauth.LoginRedirectURL,
		DevLogin:         cfg.Auth.DevLogin,
		Contact:          cfg.Contact,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

func openStorage(cfg config.Config, sm *scs.SessionManager, logger logrus.FieldLogger) (cart.Storage, func(), error) {
	scope := storage.SessionScope(sm)
	noop := func() {}

	switch cfg.Storage.Kind {
	case "session":
		return storage.NewSession(sm), noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("pinging redis at %s: %w", cfg.Redis.Addr, err)
		}

		logger.Infof("storing carts in redis at %s", cfg.Redis.Addr)
		return storage.NewRedis(client, scope, cfg.Redis.TTL), func() { client.Close() }, nil

	case "postgres":
		db, err := storage.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrating db: %w", err)
		}

		logger.Infof("storing carts in postgres at %s", cfg.DB.Host)
		return storage.NewPostgres(db, scope), func() { db.Close() }, nil

	case "file":
		f, err := storage.NewFile(cfg.Storage.Dir, scope)
		if err != nil {
			return nil, nil, err
		}

		logger.Infof("storing carts under %s", cfg.Storage.Dir)
		return f, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown storage kind %q", cfg.Storage.Kind)
}

func openBackend(cfg config.Backend, logger logrus.FieldLogger) (backend.Backend, error) {
	if cfg.URL == "" {
		logger.Warn("no backend url configured, using the in-memory backend")
		return backend.NewMemory(), nil
	}
	c, err := backend.NewClient(cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}
