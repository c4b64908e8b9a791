package daemon_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/daemon"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dbtest"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(dbtest.New(t))

	cfg := &config.Config{Seed: config.Seed{SuperAdminEmail: "Root@Ekklesia.test", SuperAdminPassword: "root password"}}

	require.NoError(t, daemon.Seed(ctx, svc, cfg))
	require.NoError(t, daemon.Seed(ctx, svc, cfg))

	n, err := user.Count(svc.DB(ctx))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := user.GetByEmail(svc.DB(ctx), "root@ekklesia.test")
	require.NoError(t, err)
	assert.Equal(t, "Super Admin", u.Name)
	assert.True(t, u.VerifyPassword("root password"))

	sub, err := svc.Subject(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, sub.IsSuperAdmin())
}

func TestSeedGeneratesPassword(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(dbtest.New(t))

	require.NoError(t, daemon.Seed(ctx, svc, &config.Config{Seed: config.Seed{SuperAdminEmail: "root@ekklesia.test"}}))

	u, err := user.GetByEmail(svc.DB(ctx), "root@ekklesia.test")
	require.NoError(t, err)
	assert.NotEmpty(t, u.Password)
	assert.False(t, u.VerifyPassword(""))
}

func TestSeedWithoutEmail(t *testing.T) {
	svc := auth.NewService(dbtest.New(t))

	err := daemon.Seed(context.Background(), svc, &config.Config{})
	require.ErrorIs(t, err, daemon.ErrNoSeedEmail)
}

func TestNewNilConfig(t *testing.T) {
	_, err := daemon.New(nil)
	require.ErrorIs(t, err, daemon.ErrConfigNil)
}

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{
		DB:        config.DB{GormEngine: config.EngineSQLite, Path: filepath.Join(t.TempDir(), "daemon.db")},
		Webserver: config.Webserver{Port: 18080, URL: "http://localhost"},
		Seed:      config.Seed{SuperAdminEmail: "root@ekklesia.test", SuperAdminPassword: "root password"},
	}

	d, err := daemon.New(cfg)
	require.NoError(t, err)
	require.NotNil(t, d)
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := daemon.New(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}
