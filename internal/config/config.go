// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	RootDomain              string `yaml:"root_domain" env:"ROOT_DOMAIN" env-default:"http://localhost:8080"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RabbitMQConnection      string `yaml:"rabbitmq_connection" env:"RABBITMQ_CONNECTION"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	TemplatesDir            string `yaml:"templates_dir" env:"TEMPLATES_DIR" env-default:"./web/templates"`
	DefaultLocale           string `yaml:"default_locale" env:"DEFAULT_LOCALE" env-default:"en"`
	ScriptsVersion          string `yaml:"scripts_version" env:"SCRIPTS_VERSION" env-default:"1.0.0"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTP                    `yaml:"smtp"`
	RateLimit               `yaml:"rate_limit"`
	Processors              `yaml:"processors"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"ADDRESS_HTTP" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"ADDRESS_REDIS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// SMTP структура для настройки исходящей почты
type SMTP struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// RateLimit настройки лимитов для анонимных и бескредитных пользователей.
// Threshold — число запросов в окне, FilesLimit — потолок суммарного размера
// загрузки в байтах, Window — длительность окна счетчика.
type RateLimit struct {
	Threshold  int           `yaml:"threshold" env:"RATE_LIMIT" env-default:"10"`
	FilesLimit int64         `yaml:"files_limit" env:"FILES_LIMIT" env-default:"2147483648"`
	Window     time.Duration `yaml:"window" env-default:"60m"`
}

// Processors ключи платежных процессоров
type Processors struct {
	StripeSecretKey      string `yaml:"stripe_secret_key" env:"STRIPE_SECRET_KEY"`
	StripePublicKey      string `yaml:"stripe_public_key" env:"STRIPE_PUBLIC_KEY"`
	PaypalClientID       string `yaml:"paypal_client_id" env:"PAYPAL_CLIENT_ID"`
	PaypalSecret         string `yaml:"paypal_secret" env:"PAYPAL_SECRET"`
	PaypalAPI            string `yaml:"paypal_api" env:"PAYPAL_API" env-default:"https://api.sandbox.paypal.com"`
	CoinbaseSharedSecret string `yaml:"coinbase_shared_secret" env:"COINBASE_SHARED_SECRET"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RabbitMQConnection: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RateLimit:\n"+
			"  Threshold: %d\n"+
			"  FilesLimit: %d\n"+
			"  Window: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.RabbitMQConnection,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Threshold,
		c.FilesLimit,
		c.Window,
	)
}
