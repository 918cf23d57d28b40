package config_test

import (
	"fmt"

	"github.com/wonny/folio/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Base currency: %s\n", cfg.Engine.BaseCurrency)
	fmt.Printf("Plan cache TTL: %s\n", cfg.Engine.PlanCacheTTL)
}
