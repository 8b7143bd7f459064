package authkit

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/stockwise/authkit/permission"
	"github.com/stockwise/authkit/session"
	"github.com/stockwise/authkit/transport"
)

// Builder defines a public type used by authkit APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	backend        transport.Backend
	profileSlot    session.Slot
	credentialSlot session.Slot
	table          *permission.Table
	auditSink      AuditSink
	logger         logrus.FieldLogger
	navigator      Navigator

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend describes the withbackend operation and its observable behavior.
//
// It replaces the HTTP backend built from ServerConfig, mainly for tests
// and embedded clients.
func (b *Builder) WithBackend(backend transport.Backend) *Builder {
	b.backend = backend
	return b
}

// WithProfileSlot describes the withprofileslot operation and its observable behavior.
func (b *Builder) WithProfileSlot(slot session.Slot) *Builder {
	b.profileSlot = slot
	return b
}

// WithCredentialSlot describes the withcredentialslot operation and its observable behavior.
func (b *Builder) WithCredentialSlot(slot session.Slot) *Builder {
	b.credentialSlot = slot
	return b
}

// WithPermissionTable describes the withpermissiontable operation and its observable behavior.
//
// The table must already be frozen; the application default is used when
// none is given.
func (b *Builder) WithPermissionTable(table *permission.Table) *Builder {
	b.table = table
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
func (b *Builder) WithLogger(log logrus.FieldLogger) *Builder {
	b.logger = log
	return b
}

// WithNavigator describes the withnavigator operation and its observable behavior.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation fails.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	backend := b.backend
	if backend == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		backend = transport.NewHTTPBackend(transport.HTTPConfig{
			BaseURL:   cfg.Server.BaseURL,
			Endpoints: cfg.Server.Endpoints,
			UserAgent: cfg.Server.UserAgent,
		})
	} else if err := validateWithBackend(cfg); err != nil {
		return nil, err
	}

	table := b.table
	if table == nil {
		table = permission.DefaultTable()
	}
	if !table.Frozen() {
		return nil, errors.New("permission table must be frozen")
	}

	log := b.logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	// -------- SESSION STORE --------
	store := session.NewStore(b.profileSlot)

	// -------- CREDENTIAL VAULT + CLIENT --------
	vault := transport.NewVault(b.credentialSlot)
	client := transport.NewClient(backend, vault, cfg.Refresh.ExpirySkew)

	manager := &Manager{
		cfg:       cfg,
		store:     store,
		client:    client,
		table:     table,
		navigator: b.navigator,
		log:       log,
	}

	manager.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	manager.metrics = NewMetrics(cfg.Metrics)

	client.SetTerminalHandler(manager.handleTerminal)
	client.SetEventHook(func(e transport.RefreshEvent) {
		switch e {
		case transport.RefreshShared:
			manager.metrics.Inc(MetricRefreshShared)
		case transport.RefreshSucceeded:
			manager.metrics.Inc(MetricRefreshSuccess)
		case transport.RefreshFailed:
			manager.metrics.Inc(MetricRefreshFailure)
		case transport.RefreshCancelled:
			manager.metrics.Inc(MetricRefreshCancelled)
		}
	})

	b.built = true

	return manager, nil
}

// validateWithBackend relaxes the BaseURL requirement when the caller
// supplies the backend directly.
func validateWithBackend(cfg Config) error {
	probe := cfg
	if probe.Server.BaseURL == "" {
		probe.Server.BaseURL = "http://backend.local"
	}
	return probe.Validate()
}
