package config

import "time"

type Config struct {
	Web     Web
	Cors    Cors
	Session Session
	Storage Storage
	Redis   Redis
	DB      DB
	Backend Backend
	Oauth   Oauth
	Auth    Auth
	Gate    Gate
	Rate    Rate
	Contact Contact
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type Session struct {
	Lifetime time.Duration `conf:"default:720h"`
	Secure   bool          `conf:"default:false"`
}

// Storage selects where session carts are persisted: session, redis,
// postgres or file.
type Storage struct {
	Kind string `conf:"default:session"`
	Dir  string `conf:"default:./var/carts"`
}

type Redis struct {
	Addr     string        `conf:"default:localhost:6379"`
	Password string        `conf:"mask"`
	DB       int           `conf:"default:0"`
	TTL      time.Duration `conf:"default:720h"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:storefront"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:10"`
	DisableTLS   bool   `conf:"default:true"`
}

// Backend points at the remote catalog/order service. An empty URL runs the
// in-memory backend, meant for local development only.
type Backend struct {
	URL     string
	Timeout time.Duration `conf:"default:10s"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:10s"`
	LoginRedirectURL string        `conf:"default:/admin/login"`
	Identity         Provider
}

type Provider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string
	RedirectURL string
}

// Auth.DevLogin routes a provider-less login, for use with the in-memory
// backend only.
type Auth struct {
	DevLogin bool `conf:"default:false"`
}

type Gate struct {
	GuardWait   time.Duration `conf:"default:3s"`
	LookupLimit time.Duration `conf:"default:10s"`
	IdleExpiry  time.Duration `conf:"default:30m"`
}

type Rate struct {
	Burst    int           `conf:"default:5"`
	Interval time.Duration `conf:"default:2s"`
	Expiry   time.Duration `conf:"default:10m"`
}

type Contact struct {
	Phone           string `conf:"default:+15550100"`
	WhatsApp        string `conf:"default:15550100"`
	InstagramHandle string `conf:"default:@wholesale.store"`
	InstagramURL    string `conf:"default:https://instagram.com/wholesale.store"`
	Address         string
}
