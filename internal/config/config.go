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
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Tokens                  `yaml:"tokens"`
	MediaService            `yaml:"media_service"`
	Uploads                 `yaml:"uploads"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Tokens структура с секретами и временем жизни access и refresh токенов.
// Секреты загружаются один раз при старте, далее не меняются и не логируются.
type Tokens struct {
	AccessSecretKey  string        `yaml:"access_secret_key" env:"ACCESS_TOKEN_SECRET"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl" env-default:"15m"`
	RefreshSecretKey string        `yaml:"refresh_secret_key" env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl" env-default:"720h"`
}

// MediaService структура для настройки клиента внешнего сервиса загрузки медиа
type MediaService struct {
	AddressMedia string        `yaml:"addressmedia"`
	TimeoutMedia time.Duration `yaml:"timeoutmedia" env-default:"10s"`
}

// Uploads структура для настройки временного каталога загружаемых файлов
type Uploads struct {
	TmpDir string `yaml:"tmp_dir" env-default:"./tmp"`
}

// MustLoad функция для загрузки конфига, читает файл по пути из CONFIG_PATH
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
	// Отсутствие ключа подписи - фатальная ошибка конфигурации, не пользовательская
	if cfg.AccessSecretKey == "" || cfg.RefreshSecretKey == "" {
		log.Fatal("token secret keys are not set")
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Tokens:\n"+
			"  AccessTokenTTL: %s\n"+
			"  RefreshTokenTTL: %s\n"+
			"MediaService:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"Uploads:\n"+
			"  TmpDir: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressRedis,
		c.User,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.TimeoutRedis,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AccessTokenTTL,
		c.RefreshTokenTTL,
		c.AddressMedia,
		c.TimeoutMedia,
		c.TmpDir,
	)
}
