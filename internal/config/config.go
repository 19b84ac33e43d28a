package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Options struct {
	runAddr           string
	logLevel          string
	logFile           string
	dataBaseDSN       string
	firestoreProject  string
	firestoreEmulator string
	seedFile          string
	contentDir        string
	redisURL          string
	leadRateLimit     int
	refreshSchedule   string
	catalogTTL        time.Duration
	baseURL           string
	trustProxy        bool
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags() {
	// Load environment variables from the .env file
	loadEnvFile()

	o.register(flag.CommandLine)

	// parse the arguments passed to the server into registered variables
	flag.Parse()
}

// Parse reads options from args using the current environment for defaults.
func (o *Options) Parse(args []string) error {
	fs := flag.NewFlagSet("maccindia", flag.ContinueOnError)
	o.register(fs)
	return fs.Parse(args)
}

func (o *Options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.logFile, "log-file", getEnvOrDefault("LOG_FILE", ""), "rotating log file, stdout only when empty")
	fs.StringVar(&o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "database connection string")
	fs.StringVar(&o.firestoreProject, "firestore-project", getEnvOrDefault("FIRESTORE_PROJECT_ID", ""), "Firestore project id")
	fs.StringVar(&o.firestoreEmulator, "firestore-emulator", getEnvOrDefault("FIRESTORE_EMULATOR_HOST", ""), "Firestore emulator host:port")
	fs.StringVar(&o.seedFile, "seed", getEnvOrDefault("SEED_FILE", ""), "YAML catalog seed, built-in catalog when empty")
	fs.StringVar(&o.contentDir, "content", getEnvOrDefault("CONTENT_DIR", ""), "directory of markdown pages overriding the built-in ones")
	fs.StringVar(&o.redisURL, "redis", getEnvOrDefault("REDIS_URL", ""), "Redis URL for shared rate limiting")
	fs.IntVar(&o.leadRateLimit, "lead-limit", cast.ToInt(getEnvOrDefault("LEAD_RATE_LIMIT", "10")), "lead submissions per client per minute")
	fs.StringVar(&o.refreshSchedule, "refresh", getEnvOrDefault("REFRESH_SCHEDULE", "@every 5m"), "cron spec for catalog refresh")
	fs.DurationVar(&o.catalogTTL, "cache-ttl", cast.ToDuration(getEnvOrDefault("CATALOG_TTL", "5m")), "catalog snapshot lifetime")
	fs.StringVar(&o.baseURL, "base-url", getEnvOrDefault("BASE_URL", "https://www.maccindia.in"), "public site URL for canonical links and the sitemap")
	fs.BoolVar(&o.trustProxy, "trust-proxy", cast.ToBool(getEnvOrDefault("TRUST_PROXY", "false")), "take the client IP from X-Forwarded-For/X-Real-IP; only behind a proxy that sets them")
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) LogFile() string {
	return o.logFile
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) FirestoreProject() string {
	return o.firestoreProject
}

func (o *Options) FirestoreEmulator() string {
	return o.firestoreEmulator
}

func (o *Options) SeedFile() string {
	return o.seedFile
}

func (o *Options) ContentDir() string {
	return o.contentDir
}

func (o *Options) RedisURL() string {
	return o.redisURL
}

func (o *Options) LeadRateLimit() int {
	return o.leadRateLimit
}

func (o *Options) RefreshSchedule() string {
	return o.refreshSchedule
}

func (o *Options) CatalogTTL() time.Duration {
	return o.catalogTTL
}

func (o *Options) BaseURL() string {
	return o.baseURL
}

func (o *Options) TrustProxy() bool {
	return o.trustProxy
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file in the working
// directory or, when run from cmd/maccindia, the module root.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	for _, envPath := range []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, "..", "..", ".env"),
	} {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf(".env file loaded from %s", envPath)
			return
		}
	}
	log.Printf("No .env file found, proceeding without it")
}
