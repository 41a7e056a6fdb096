package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	API     API     `envPrefix:"API_"`
	Store   Store   `envPrefix:"STORE_"`
	Redis   Redis   `envPrefix:"REDIS_"`
	Catalog Catalog `envPrefix:"CATALOG_"`
	Payment Payment `envPrefix:"PAYMENT_"`
}

type API struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://books-management-system-bcr5.onrender.com/api"`
	// ConfigURL points at the backend's GET /config endpoint; empty skips discovery.
	ConfigURL string `env:"CONFIG_URL"`
	// Zero means no client side timeout.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

type Store struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql
	DSN    string `env:"DSN" envDefault:"storefront.db"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Catalog struct {
	RefreshInterval   time.Duration `env:"REFRESH_INTERVAL" envDefault:"10s"`
	PlaceholderCover  string        `env:"PLACEHOLDER_COVER" envDefault:"assets/placeholder.jpg"`
	StaticCoverPrefix string        `env:"STATIC_COVER_PREFIX" envDefault:"static/covers/"`
	LocalAssetPrefix  string        `env:"LOCAL_ASSET_PREFIX" envDefault:"assets/"`
}

type Payment struct {
	Amount     string `env:"AMOUNT" envDefault:"100"`
	Currency   string `env:"CURRENCY" envDefault:"Ksh"`
	TestMarker string `env:"TEST_MARKER" envDefault:"Test payment"`
	// SuccessPageURL is the page the download link points at.
	SuccessPageURL string `env:"SUCCESS_PAGE_URL" envDefault:"download-success.html"`
	// DownloadURL is where /download-success forwards the user; the backend verifies the token there.
	DownloadURL string `env:"DOWNLOAD_URL" envDefault:"https://books-management-system-bcr5.onrender.com/api/download"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"127.0.0.1"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
