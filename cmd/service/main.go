package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/config"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/logging"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/service"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer logger.Sync()
	service.SetLogger(logger)

	sqlDB := service.CreateDatabase(cfg)
	defer sqlDB.Close()
	service.SetupDatabaseWrapper(sqlDB)
	router := service.SetupHttpRouter(cfg.GinLogging)
	logger.Info("contacts service listening", zap.String("addr", cfg.Addr()))
	if err := router.Run(cfg.Addr()); err != nil {
		logger.Fatal("contacts service stopped", zap.Error(err))
	}
}
