package service

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yatube/app/config"
	"yatube/app/logger"
	"yatube/app/repositories"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// splitConfigFlag pulls "--config <path>" out of args wherever it appears.
func splitConfigFlag(args []string) (string, []string, error) {
	rest := make([]string, 0, len(args))
	path := ""
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--config requires a file path")
			}
			path = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--config="):
			path = strings.TrimPrefix(args[i], "--config=")
		default:
			rest = append(rest, args[i])
		}
	}
	return path, rest, nil
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config file: %w", statErr)
		}
		cfg, _, err = config.Load(path)
	} else {
		cfg, _, err = config.Load()
	}
	return cfg, err
}

// dbPath is where the badger files live under the storage directory.
func dbPath(cfg *config.Config) string {
	return filepath.Join(cfg.Storage.Path, "badger")
}

func backupDir(cfg *config.Config) string {
	return filepath.Join(cfg.Storage.Path, "backups")
}

func openRepository(cfg *config.Config, log *zap.Logger) (*repositories.Repository, error) {
	return repositories.Open(repositories.Options{
		Path:     dbPath(cfg),
		InMemory: cfg.Storage.InMemory,
		Logger:   log,
	})
}

// cliLogger only surfaces badger warnings during maintenance commands.
func cliLogger() *zap.Logger {
	return logger.NewConsole(zapcore.WarnLevel)
}

// confirm asks a yes/no question on stdin; anything but y/Y is a no.
func confirm(question string) bool {
	fmt.Print(question + " [y/N] ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
