package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	CORS       CORSConfig       `yaml:"cors"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
	Languages  LanguagesConfig  `yaml:"languages"`
	Tagger     TaggerConfig     `yaml:"tagger"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Lesson     LessonConfig     `yaml:"lesson"`
	Courses    CoursesConfig    `yaml:"courses"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,Idempotency-Key"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds bearer token settings shared with the identity service.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"babble"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Language is a supported language code with its display name.
type Language struct {
	Code string
	Name string
}

// LanguagesConfig lists the languages every sentence is generated in.
type LanguagesConfig struct {
	// Raw is "code:Name" pairs, comma-separated, in prompt order.
	Raw string `yaml:"list" env:"LANGUAGES" env-default:"es:Spanish,en:English"`

	// List is parsed from Raw during validation.
	List []Language `yaml:"-" env:"-"`
}

// Codes returns the language codes in configured order.
func (c LanguagesConfig) Codes() []string {
	codes := make([]string, len(c.List))
	for i, l := range c.List {
		codes[i] = l.Code
	}
	return codes
}

// TaggerConfig holds the POS tagging service settings.
type TaggerConfig struct {
	URL     string        `yaml:"url"     env:"TAGGER_URL"     env-default:"http://localhost:8090"`
	Timeout time.Duration `yaml:"timeout" env:"TAGGER_TIMEOUT" env-default:"10s"`
	// ModelsRaw is the comma-separated list of languages the tagger has models for.
	ModelsRaw string `yaml:"models" env:"TAGGER_MODELS" env-default:"es,en"`

	// Models is parsed from ModelsRaw during validation.
	Models []string `yaml:"-" env:"-"`
}

// GeneratorConfig holds the sentence generator settings.
type GeneratorConfig struct {
	APIKey    string        `yaml:"api_key"    env:"GENERATOR_API_KEY"`
	BaseURL   string        `yaml:"base_url"   env:"GENERATOR_BASE_URL"`
	Model     string        `yaml:"model"      env:"GENERATOR_MODEL"      env-default:"claude-sonnet-4-5"`
	MaxTokens int           `yaml:"max_tokens" env:"GENERATOR_MAX_TOKENS" env-default:"4096"`
	Timeout   time.Duration `yaml:"timeout"    env:"GENERATOR_TIMEOUT"    env-default:"45s"`
}

// CorpusConfig holds corpus resolution limits.
type CorpusConfig struct {
	MaxPasses                int           `yaml:"max_passes"                 env:"CORPUS_MAX_PASSES"                 env-default:"5"`
	MinBatchSize             int           `yaml:"min_batch_size"             env:"CORPUS_MIN_BATCH_SIZE"             env-default:"10"`
	MaxBatchSize             int           `yaml:"max_batch_size"             env:"CORPUS_MAX_BATCH_SIZE"             env-default:"20"`
	SmallDictionaryThreshold int           `yaml:"small_dictionary_threshold" env:"CORPUS_SMALL_DICTIONARY_THRESHOLD" env-default:"10"`
	Concurrency              int           `yaml:"concurrency"                env:"CORPUS_CONCURRENCY"                env-default:"3"`
	ResolveTimeout           time.Duration `yaml:"resolve_timeout"            env:"CORPUS_RESOLVE_TIMEOUT"            env-default:"60s"`
	SkipProperNouns          bool          `yaml:"skip_proper_nouns"          env:"CORPUS_SKIP_PROPER_NOUNS"          env-default:"false"`
}

// LessonConfig holds lesson assembly parameters.
type LessonConfig struct {
	Exercises        int `yaml:"exercises"          env:"LESSON_EXERCISES"          env-default:"8"`
	WordsToPractice  int `yaml:"words_to_practice"  env:"LESSON_WORDS_TO_PRACTICE"  env-default:"4"`
	NewWords         int `yaml:"new_words"          env:"LESSON_NEW_WORDS"          env-default:"5"`
	BadWordThreshold int `yaml:"bad_word_threshold" env:"LESSON_BAD_WORD_THRESHOLD" env-default:"70"`
	NewWordMaxSeen   int `yaml:"new_word_max_seen"  env:"LESSON_NEW_WORD_MAX_SEEN"  env-default:"5"`
	// Upper bounds for the n a learner may request.
	MaxExercises int `yaml:"max_exercises"  env:"LESSON_MAX_EXERCISES"  env-default:"50"`
	MaxNewWords  int `yaml:"max_new_words"  env:"LESSON_MAX_NEW_WORDS"  env-default:"50"`
}

// DictionaryConfig controls the word translation dictionary. Missing words
// are translated by the generator model and cached.
type DictionaryConfig struct {
	Enabled      bool          `yaml:"enabled"       env:"DICTIONARY_ENABLED"       env-default:"true"`
	Concurrency  int           `yaml:"concurrency"   env:"DICTIONARY_CONCURRENCY"   env-default:"4"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"DICTIONARY_FETCH_TIMEOUT" env-default:"15s"`
}

// CoursesConfig locates the course catalog.
type CoursesConfig struct {
	Dir string `yaml:"dir" env:"COURSES_DIR" env-default:"./courses"`
}

// RedisConfig enables submission de-duplication when Addr is set.
type RedisConfig struct {
	Addr           string        `yaml:"addr"            env:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"REDIS_IDEMPOTENCY_TTL" env-default:"24h"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM" env-default:"120"`
}
