package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

func TestDialectorFor(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/cqox": "postgres",
		"postgresql://localhost/cqox":        "postgres",
		"sqlite://emotion.db":                "sqlite",
		"file::memory:?cache=shared":         "sqlite",
		":memory:":                           "sqlite",
	}
	for url, want := range cases {
		_, got, err := dialectorFor(url)
		require.NoError(t, err, url)
		require.Equal(t, want, got, url)
	}

	_, _, err := dialectorFor("mysql://root@localhost/cqox")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "root@localhost")
}

func TestResolveURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "")
	require.Equal(t, "sqlite://emotion.db", ResolveURL())

	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_USER", "cq")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	require.Equal(t, "postgres://cq:pw@db.internal:5432/cqox?sslmode=disable", ResolveURL())

	t.Setenv("DATABASE_URL", "sqlite://other.db")
	require.Equal(t, "sqlite://other.db", ResolveURL())
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	svc, err := Open("file::memory:", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.Equal(t, "sqlite", svc.Dialect())
	require.NoError(t, AutoMigrateAll(svc.DB()))
	require.True(t, svc.DB().Migrator().HasTable("emotion_path_summary"))
	require.True(t, svc.DB().Migrator().HasIndex("emotion_treatment_effect", "uq_treatment_effect"))
}
