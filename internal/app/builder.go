package app

import (
	"fmt"

	"swingflow/internal/alertrule"
	"swingflow/internal/config"
	"swingflow/internal/journal"
	"swingflow/internal/lifecycle"
	"swingflow/internal/logger"
	"swingflow/internal/notify"
	"swingflow/internal/store/sqlite"
	tradehttp "swingflow/internal/transport/http/trade"
)

// Build wires the application from configuration: storage, journal, alert
// rules, publishers, the lifecycle machine and the HTTP server.
func Build(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	st, err := sqlite.NewSqliteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening trade store: %w", err)
	}

	var jr *journal.Store
	if cfg.Database.JournalPath != "" {
		jr, err = journal.NewStore(cfg.Database.JournalPath)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("opening event journal: %w", err)
		}
	}

	var rules *alertrule.Registry
	if cfg.Rules.Path != "" {
		rules, err = alertrule.NewRegistry(cfg.Rules.Path)
		if err != nil {
			st.Close()
			if jr != nil {
				jr.Close()
			}
			return nil, fmt.Errorf("loading alert rules: %w", err)
		}
		rules.OnChange(func(snap alertrule.Snapshot) {
			logger.Infof("alert rules reloaded (version %d)", snap.Version)
		})
	}

	pubs := buildPublishers(cfg, rules)

	opts := []lifecycle.Option{}
	if jr != nil {
		opts = append(opts, lifecycle.WithJournal(jr))
	}
	machine := lifecycle.NewMachine(st, pubs, opts...)

	router := tradehttp.NewRouter(machine, st, jr, rules)
	server, err := tradehttp.NewServer(tradehttp.ServerConfig{
		Addr:   cfg.App.HTTPAddr,
		Router: router,
	})
	if err != nil {
		st.Close()
		if jr != nil {
			jr.Close()
		}
		return nil, err
	}

	return &App{
		cfg:     cfg,
		store:   st,
		journal: jr,
		machine: machine,
		http:    server,
	}, nil
}

func buildPublishers(cfg *config.Config, rules *alertrule.Registry) lifecycle.Publishers {
	pubs := lifecycle.Publishers{
		Alerts:   notify.NoopAlertPublisher{},
		Promo:    notify.NoopPromoPublisher{},
		Tracking: notify.NoopTrackingSignal{},
		Ops:      notify.NoopTextNotifier{},
	}
	if cfg.Notify.Alerts.Enabled {
		pubs.Alerts = notify.NewHTTPAlertPublisher(cfg.Notify.Alerts.Endpoint, rules)
	} else {
		logger.Infof("member alerts disabled, using noop publisher")
	}
	if cfg.Notify.Promo.Enabled {
		pubs.Promo = notify.NewPromoClient(cfg.Notify.Promo.Endpoint, cfg.Notify.Promo.TestMode)
	}
	if cfg.Notify.Tracking.Enabled {
		pubs.Tracking = notify.NewTrackingClient(cfg.Notify.Tracking.Endpoint)
	}
	if cfg.Notify.Slack.Enabled {
		pubs.Ops = notify.NewSlack(cfg.Notify.Slack.WebhookURL)
	}
	return pubs
}
