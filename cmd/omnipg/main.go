package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/rebeliceyang/omnipg/internal/app"
	"github.com/rebeliceyang/omnipg/internal/config"
	"github.com/rebeliceyang/omnipg/internal/db"
	"github.com/rebeliceyang/omnipg/internal/export"
	"github.com/rebeliceyang/omnipg/internal/history"
	"github.com/rebeliceyang/omnipg/internal/logging"
	"github.com/rebeliceyang/omnipg/internal/models"
	"github.com/rebeliceyang/omnipg/internal/omnibox"
	"github.com/rebeliceyang/omnipg/internal/secrets"
	"github.com/rebeliceyang/omnipg/internal/views"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *pflag.FlagSet) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logOut := logging.OpenLog(cfg.Log.Path, 0o600)
	defer logging.CloseLog(logOut)
	logger := logging.New(logOut, logging.ParseLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	viewsMgr, err := views.NewManager(cfg.Views.Path)
	if err != nil {
		logger.Error(ctx, "saved views unavailable", err, "path", cfg.Views.Path)
		viewsMgr = nil
	}

	if path, _ := flags.GetString("export-views"); path != "" {
		if viewsMgr == nil {
			return errors.Wrap(err, "cannot export views")
		}
		if err := viewsMgr.Export(path); err != nil {
			return err
		}
		fmt.Printf("Exported %d views to %s\n", len(viewsMgr.GetAll()), path)
		return nil
	}

	conn := models.ConnectionConfig{
		Host:     cfg.Connection.Host,
		Port:     cfg.Connection.Port,
		Database: cfg.Connection.Database,
		User:     cfg.Connection.User,
		Password: cfg.Connection.Password,
		SSLMode:  cfg.Connection.SSLMode,
	}
	if cfg.Data.File == "" {
		conn, err = resolvePassword(ctx, flags, conn, logger)
		if err != nil {
			return err
		}
	}

	src, err := db.Open(ctx, db.Options{
		File:         cfg.Data.File,
		Connection:   conn,
		Schema:       cfg.Connection.Schema,
		Table:        cfg.Connection.Table,
		PoolSize:     int32(cfg.Performance.ConnectionPoolSize),
		QueryTimeout: time.Duration(cfg.Performance.QueryTimeout) * time.Millisecond,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	c, r := app.NewController(cfg, src, logger)

	var params []string
	if name, _ := flags.GetString("view"); name != "" {
		if viewsMgr == nil {
			return errors.Errorf("cannot open view %q: saved views unavailable", name)
		}
		sv, ok := viewsMgr.Find(src.Name(), name)
		if !ok {
			return errors.Errorf("no saved view %q for %s", name, src.Name())
		}
		params = sv.Params
		if err := viewsMgr.RecordUsage(sv.ID); err != nil {
			logger.Error(ctx, "failed to record view usage", err, "view", name)
		}
	}

	exportPath, _ := flags.GetString("export")
	filters, _ := flags.GetStringArray("filter")
	if len(filters) > 0 || exportPath != "" {
		values, err := app.ApplyTexts(ctx, c, r, params, filters)
		if err != nil {
			return err
		}
		params = omnibox.Params(values)

		if exportPath != "" {
			return exportRows(ctx, src, values, exportPath, cfg.Data.PageSize)
		}
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(cfg.History.Path, cfg.History.MaxEntries)
		if err != nil {
			logger.Error(ctx, "history unavailable", err, "path", cfg.History.Path)
			store = nil
		} else {
			defer store.Close()
		}
	}

	if params == nil && store != nil && cfg.History.RestoreLast {
		last, ok, err := store.Last(ctx, src.Name())
		if err != nil {
			logger.Error(ctx, "failed to read last view", err, "source", src.Name())
		} else if ok {
			params = last.Params
		}
	}

	zone.NewGlobal()

	model := app.New(ctx, app.Options{
		Config:        cfg,
		Source:        src,
		History:       store,
		Views:         viewsMgr,
		Logger:        logger,
		Controller:    c,
		Runner:        r,
		InitialParams: params,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(model, opts...)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "error running program")
	}
	return nil
}

// resolvePassword fills the password from the keyring, or stores the given
// one when --save-password is set
func resolvePassword(ctx context.Context, flags *pflag.FlagSet, conn models.ConnectionConfig, logger logging.Logger) (models.ConnectionConfig, error) {
	passwords := secrets.NewPasswordStore()

	if save, _ := flags.GetBool("save-password"); save {
		if conn.Password == "" {
			return conn, errors.New("--save-password needs a password (set OMNIPG_CONNECTION_PASSWORD)")
		}
		if err := passwords.Save(conn, conn.Password); err != nil {
			return conn, err
		}
		logger.Info(ctx, "saved password to keyring", "conn", conn.String())
		return conn, nil
	}

	resolved, err := passwords.Resolve(conn)
	if err != nil {
		// fall back to pgpass and PGPASSWORD
		logger.Warn(ctx, "keyring lookup failed", "conn", conn.String(), "error", err)
		return conn, nil
	}
	return resolved, nil
}

func exportRows(ctx context.Context, src db.Source, values []omnibox.ActionValue, path string, pageSize int) error {
	view, err := omnibox.BuildView(omnibox.Collect(values))
	if err != nil {
		return err
	}
	data, err := app.FetchAll(ctx, src, view, pageSize)
	if err != nil {
		return err
	}
	if err := export.Rows(data, path); err != nil {
		return err
	}
	fmt.Printf("Exported %d rows to %s\n", len(data.Rows), path)
	return nil
}
