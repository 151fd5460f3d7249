package api

import (
	"os"

	"github.com/joho/godotenv"
)

// DefaultAddr is the listen address used when BILINGO_ADDR is unset.
const DefaultAddr = ":8080"

// Config holds the HTTP host configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// LoadConfig reads the host configuration from the environment. A .env
// file in the working directory is loaded first when present; real
// environment variables win over .env entries.
func LoadConfig() Config {
	_ = godotenv.Load()

	addr := os.Getenv("BILINGO_ADDR")
	if addr == "" {
		addr = DefaultAddr
	}

	return Config{Addr: addr}
}
