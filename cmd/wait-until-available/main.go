package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/config"
)

// pollInterval is the time between two attempts to reach the service.
const pollInterval = 5 * time.Second

// Usage example on the command line:
// > PORT=8080 go run main.go
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	url := fmt.Sprintf("http://localhost:%s/contacts", cfg.Port)
	totalWaitTime := 0
	for !available(url) {
		totalWaitTime += int(pollInterval.Seconds())
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(pollInterval)
	}
}

// available returns true once the service answers the listing of contacts. An empty database is
// answered with NOT FOUND, which counts as available as well.
func available(url string) bool {
	res, err := http.Get(url)
	if err != nil {
		fmt.Println(err)
		return false
	}
	defer res.Body.Close()
	fmt.Println(res.Status)
	return res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNotFound
}
