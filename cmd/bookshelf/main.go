// Command bookshelf is the CLI client for the bookshelf API: search the
// book catalog, keep a session, and manage your saved-book shelf.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	config := DefaultConfig()
	if _, err := os.Stat("bookshelf.toml"); err == nil {
		if loaded, err := LoadConfig("bookshelf.toml"); err == nil {
			config = loaded
		} else {
			logger.Warn("ignoring unreadable config file", "error", err)
		}
	}

	runner := NewRunner(config, logger)

	app := &cli.Command{
		Name:    "bookshelf",
		Usage:   "Search books and keep a saved-book shelf",
		Version: "1.0.0",
		Commands: []*cli.Command{
			registerCommand(runner),
			loginCommand(runner),
			logoutCommand(runner),
			whoamiCommand(runner),
			searchCommand(runner),
			saveCommand(runner),
			removeCommand(runner),
			shelfCommand(runner),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}

func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
		},
		Action: r.Register,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the stored session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the identity of the current session",
		Action: r.WhoAmI,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the book catalog (saved books are marked with *)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Action: r.Search,
	}
}

func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a book from the last search onto your shelf",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "bookId"},
		},
		Action: r.Save,
	}
}

func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "Remove a book from your shelf",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "bookId"},
		},
		Action: r.Remove,
	}
}

func shelfCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "shelf",
		Usage:  "List your saved books",
		Action: r.Shelf,
	}
}
