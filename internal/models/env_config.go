package models

import (
	"fmt"
	"os"
	"strconv"
)

type EnvConfig struct {
	DatabaseURL   string
	Port          string
	Debug         bool
	BanGatesIntel bool
	FeedLimit     int
	SeedFiller    int
}

func ReadEnvConfig() EnvConfig {
	debug := os.Getenv("BISIK_DEBUG") == "true"
	port := os.Getenv("BISIK_PORT")
	if port == "" {
		port = "3000"
	}
	feedLimit, err := strconv.Atoi(os.Getenv("BISIK_FEED_LIMIT"))
	if err != nil {
		fmt.Println("Using default value for BISIK_FEED_LIMIT")
		feedLimit = 15
	}
	seedFiller, err := strconv.Atoi(os.Getenv("BISIK_SEED_FILLER"))
	if err != nil {
		fmt.Println("Using default value for BISIK_SEED_FILLER")
		seedFiller = 10
	}
	return EnvConfig{
		DatabaseURL:   os.Getenv("BISIK_DATABASE_URL"),
		Port:          port,
		Debug:         debug,
		BanGatesIntel: os.Getenv("BISIK_BAN_GATES_INTEL") == "true",
		FeedLimit:     feedLimit,
		SeedFiller:    seedFiller,
	}
}
