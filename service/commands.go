package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yatube/app/apperr"
	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/services"
)

// HandleCommand runs a subcommand and returns an exit code.
func HandleCommand(args []string) int {
	cfgPath, args, err := splitConfigFlag(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := args[0]
	if cmd == "help" {
		printHelp()
		return 0
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	switch cmd {
	case "serve":
		return RunAppServer(cfg)
	case "clean":
		clean(cfg)
		return 0
	case "init":
		return initDb(cfg)
	case "backup":
		return backup(cfg)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(cfg, args[1])
	case "group":
		return groupCommand(cfg, args[1:])
	case "user":
		return userCommand(cfg, args[1:])
	case "cache":
		return cacheCommand(cfg, args[1:])
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: yatube [--config <file>] <command>

Commands:
  serve                                  Run the blog
  init                                   Initialize a new empty database
  clean                                  Delete the database
  backup                                 Create a backup of the database
  restore <file>                         Restore database from backup
  group add <slug> <title> [description] Create a community group
  group delete <slug>                    Delete a group, keeping its posts
  user add <username> <email> <password> Create an account
  user promote <username>                Grant staff rights
  cache flush                            Drop the cached home listing (redis backend)
  help                                   Display this help message
  version                                Show version information
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean(cfg *config.Config) {
	path := dbPath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return
	}

	if err := os.RemoveAll(path); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return
	}
	fmt.Println("Database cleaned successfully")
}

// initDb creates an empty database.
func initDb(cfg *config.Config) int {
	path := dbPath(cfg)
	if _, err := os.Stat(path); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	repo, err := openRepository(cfg, cliLogger())
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer repo.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full backup to the backups directory.
func backup(cfg *config.Config) int {
	if _, err := os.Stat(dbPath(cfg)); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	dir := backupDir(cfg)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	repo, err := openRepository(cfg, cliLogger())
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := repo.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database with a backup.
func restore(cfg *config.Config, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	path := dbPath(cfg)
	if _, err := os.Stat(path); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(path); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	repo, err := openRepository(cfg, cliLogger())
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := repo.Restore(f); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

func groupCommand(cfg *config.Config, args []string) int {
	usage := "Usage: yatube group add <slug> <title> [description] | yatube group delete <slug>"
	if len(args) < 2 || (args[0] == "add" && len(args) < 3) {
		fmt.Println(usage)
		return 1
	}
	if args[0] != "add" && args[0] != "delete" {
		fmt.Println(usage)
		return 1
	}

	repo, err := openRepository(cfg, cliLogger())
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()
	groups := services.NewGroupService(repo.Groups())

	if args[0] == "delete" {
		err := groups.DeleteGroup(args[1])
		if errors.Is(err, apperr.ErrNotFound) {
			fmt.Printf("No such group: %s\n", args[1])
			return 1
		}
		if err != nil {
			fmt.Printf("Failed to delete group: %v\n", err)
			return 1
		}
		fmt.Printf("Group %q deleted; its posts are now ungrouped\n", args[1])
		return 0
	}

	description := ""
	if len(args) > 3 {
		description = args[3]
	}
	g, err := groups.CreateGroup(args[2], args[1], description)
	if err != nil {
		fmt.Printf("Failed to create group: %v\n", err)
		return 1
	}
	fmt.Printf("Group %q created with id %d\n", g.Slug, g.ID)
	return 0
}

func userCommand(cfg *config.Config, args []string) int {
	usage := "Usage: yatube user add <username> <email> <password> | yatube user promote <username>"
	if len(args) < 2 {
		fmt.Println(usage)
		return 1
	}

	repo, err := openRepository(cfg, cliLogger())
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()
	users := services.NewUserService(repo.Users())

	switch args[0] {
	case "add":
		if len(args) < 4 {
			fmt.Println(usage)
			return 1
		}
		u, err := users.Register(args[1], args[2], args[3])
		if err != nil {
			fmt.Printf("Failed to create user: %v\n", err)
			return 1
		}
		fmt.Printf("User %q created with id %d\n", u.Username, u.ID)
	case "promote":
		u, err := users.Promote(args[1])
		if errors.Is(err, apperr.ErrNotFound) {
			fmt.Printf("No such user: %s\n", args[1])
			return 1
		}
		if err != nil {
			fmt.Printf("Failed to promote user: %v\n", err)
			return 1
		}
		fmt.Printf("User %q is now staff\n", u.Username)
	default:
		fmt.Println(usage)
		return 1
	}
	return 0
}

func cacheCommand(cfg *config.Config, args []string) int {
	if len(args) < 1 || args[0] != "flush" {
		fmt.Println("Usage: yatube cache flush")
		return 1
	}
	if cfg.Cache.Backend != "redis" {
		fmt.Println("The memory cache lives inside the server process; use the staff flush action or restart the server")
		return 1
	}

	rs := newRedisStore(cfg)
	defer rs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.New(rs, cliLogger(), nil).Invalidate(ctx, cache.HomeKey); err != nil {
		fmt.Printf("Failed to flush cache: %v\n", err)
		return 1
	}
	fmt.Println("Home listing cache flushed")
	return 0
}
