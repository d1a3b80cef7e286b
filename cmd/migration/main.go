package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/config"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/logging"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/service"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	_ = godotenv.Load()

	filePtr := flag.String("file", "scripts/database.sql", "the sql file to execute")
	flag.Parse()

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

	db := sqlx.NewDb(service.CreateDatabase(cfg), "mysql")
	defer db.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		logger.Fatal("could not open sql file", zap.String("file", *filePtr), zap.Error(err))
	}
	defer readFile.Close()

	statements, err := splitStatements(readFile)
	if err != nil {
		logger.Fatal("could not read sql file", zap.String("file", *filePtr), zap.Error(err))
	}
	for _, statement := range statements {
		db.MustExec(statement)
	}
	logger.Info("migration finished", zap.String("file", *filePtr), zap.Int("statements", len(statements)))
}

// splitStatements reads SQL statements that end with a semicolon at the end of a line. Lines
// starting with '--' are comments.
func splitStatements(r io.Reader) ([]string, error) {
	var statements []string
	fileScanner := bufio.NewScanner(r)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := strings.TrimSpace(fileScanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			statements = append(statements, builder.String())
			builder = strings.Builder{}
		}
	}
	return statements, fileScanner.Err()
}
