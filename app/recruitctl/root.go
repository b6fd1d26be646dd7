package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/recruitportal/config"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/identity"
	"github.com/yoockh/recruitportal/internal/logger"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/workers"
)

// operator is the principal the CLI acts as. Shell access to the database
// host already implies Master rights.
var operator = access.Principal{UserID: "recruitctl", FullName: "recruitctl", Roles: []access.Role{access.RoleMaster}}

type commandContext struct {
	envFile string
	log     *logrus.Logger

	settings *config.Settings
	store    pgrepo.Store
}

func (c *commandContext) ensureStore() (pgrepo.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	if err := config.InitPostgres(); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.store = pgrepo.NewStore(config.PostgresDB)
	return c.store, nil
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	s, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	c.settings = s
	return s, nil
}

func (c *commandContext) userService() (services.UserService, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	s, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}

	var idp identity.Provider
	if s.AuthProvider == "local" {
		idp = identity.NewLocalProvider(store.Users(), identity.TokenConfig{Secret: s.JWTSecret, Issuer: s.JWTIssuer, Audience: s.JWTAudience, TTL: s.JWTTTL})
	} else {
		idp = identity.NewGoTrueProvider(identity.GoTrueConfig{URL: s.SupabaseURL, AnonKey: s.SupabaseAnonKey, ServiceRoleKey: s.SupabaseServiceKey})
	}
	return services.NewUserService(store.Users(), idp, c.log), nil
}

// outboxService publishes requeued rows when Redis is reachable; otherwise
// the server's sweeper picks them up.
func (c *commandContext) outboxService() (services.OutboxService, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	var pub services.OutboxPublisher
	if err := config.InitRedis(); err == nil {
		pub = &workers.RedisPublisher{Redis: config.RedisClient}
	} else {
		c.log.WithError(err).Debug("redis unavailable; requeue relies on the sweeper")
	}
	return services.NewOutboxService(store.Outbox(), pub, c.log), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	root := &cobra.Command{
		Use:           "recruitctl",
		Short:         "Operate the recruitment portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if ctx.envFile != "" {
				_ = godotenv.Load(ctx.envFile)
			} else {
				_ = godotenv.Load()
			}
			ctx.log = logger.New()
		},
	}
	root.PersistentFlags().StringVar(&ctx.envFile, "env-file", "", "Load environment from this file instead of ./.env")

	root.AddCommand(newMigrateCommand(ctx))
	root.AddCommand(newSeedRolesCommand(ctx))
	root.AddCommand(newUsersCommand(ctx))
	root.AddCommand(newOutboxCommand(ctx))

	return root
}
