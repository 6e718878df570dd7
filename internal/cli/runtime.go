package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/chat"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/config"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/logging"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/store"
)

// runtime bundles everything a command needs: loaded config, the acting
// identity, an open slot store, and a service bound to both.
type runtime struct {
	cfg      *config.Config
	identity models.Identity
	store    store.SlotStore
	service  *chat.Service
	closer   func() error
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	identity, err := resolveIdentity(cmd)
	if err != nil {
		return nil, err
	}
	identityLogger := logging.WithIdentity(identity.ID)
	identityLogger.Debug().
		Str("role", string(identity.Role)).
		Str("backend", cfg.Storage.Backend).
		Msg("session starting")

	slots, closer, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}

	var opts []chat.ServiceOption
	if identity.Role == models.RoleCustomer {
		opts = append(opts, chat.WithSupportPeer(supportPeer(cmd, cfg)))
	}

	service, err := chat.NewService(cmd.Context(), identity, slots, opts...)
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		identity: identity,
		store:    slots,
		service:  service,
		closer:   closer,
	}, nil
}

func (r *runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.service != nil {
		r.service.Close()
	}
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// supportPeer resolves the support-side identity a customer session
// falls back to when mirroring edits and deletes.
func supportPeer(cmd *cobra.Command, cfg *config.Config) models.Identity {
	id := cfg.Chat.SupportID
	if override, _ := cmd.Flags().GetString("support-id"); override != "" {
		id = override
	}
	return models.Identity{ID: id, Role: models.RoleSupport}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.LoadDefault()
}

// resolveIdentity builds the acting identity from flags. The core is
// inert without one, so --as is required everywhere.
func resolveIdentity(cmd *cobra.Command) (models.Identity, error) {
	id, _ := cmd.Flags().GetString("as")
	if strings.TrimSpace(id) == "" {
		return models.Identity{}, fmt.Errorf("acting identity is required (--as)")
	}

	name, _ := cmd.Flags().GetString("name")
	roleFlag, _ := cmd.Flags().GetString("role")
	role := models.Role(strings.ToLower(strings.TrimSpace(roleFlag)))
	if !role.Valid() {
		return models.Identity{}, fmt.Errorf("invalid role %q (expected customer or support)", roleFlag)
	}

	identity := models.Identity{ID: id, DisplayName: name, Role: role}
	if err := identity.Validate(); err != nil {
		return models.Identity{}, err
	}
	return identity, nil
}

func openStore(cmd *cobra.Command, cfg *config.Config) (store.SlotStore, func() error, error) {
	backend := cfg.Storage.Backend
	if override, _ := cmd.Flags().GetString("backend"); override != "" {
		backend = override
	}

	switch backend {
	case config.BackendFile:
		slots, err := store.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return slots, nil, nil
	case config.BackendSQLite:
		slots, err := store.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return slots, slots.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
