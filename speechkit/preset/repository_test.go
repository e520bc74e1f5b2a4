package preset

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	db, err := sqlx.Connect("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)

	// always use the latest schema
	goose.SetBaseFS(nil)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db.DB, "../../migrations"))

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Save and Find", func(t *testing.T) {
		scope := ScopeUser
		key := "alice"
		presetID := PresetID("test-preset-a")

		err := repo.Save(ctx, scope, key, presetID)
		require.NoError(t, err)

		foundPresetID, err := repo.Find(ctx, scope, key)
		require.NoError(t, err)
		require.Equal(t, presetID, foundPresetID)
	})

	t.Run("Save and Update", func(t *testing.T) {
		scope := ScopeGlobal
		key := "default"
		presetID1 := PresetID("test-preset-c")
		presetID2 := PresetID("test-preset-d")

		err := repo.Save(ctx, scope, key, presetID1)
		require.NoError(t, err)

		err = repo.Save(ctx, scope, key, presetID2) // Save again with the same key
		require.NoError(t, err)

		foundPresetID, err := repo.Find(ctx, scope, key)
		require.NoError(t, err)
		require.Equal(t, presetID2, foundPresetID) // Should be the updated value
	})

	t.Run("Find Not Found", func(t *testing.T) {
		_, err := repo.Find(ctx, ScopeUser, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Scopes are isolated", func(t *testing.T) {
		key := "shared-key"
		require.NoError(t, repo.Save(ctx, ScopeUser, key, "test-preset-user"))
		require.NoError(t, repo.Save(ctx, ScopeGlobal, key, "test-preset-global"))

		foundPresetID, err := repo.Find(ctx, ScopeUser, key)
		require.NoError(t, err)
		require.Equal(t, PresetID("test-preset-user"), foundPresetID)
	})

	t.Run("Delete", func(t *testing.T) {
		scope := ScopeUser
		key := "bob"
		presetID := PresetID("test-preset-b")

		err := repo.Save(ctx, scope, key, presetID)
		require.NoError(t, err)

		err = repo.Delete(ctx, scope, key)
		require.NoError(t, err)

		_, err = repo.Find(ctx, scope, key)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete Not Found", func(t *testing.T) {
		err := repo.Delete(ctx, ScopeUser, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDialectSQL(t *testing.T) {
	t.Run("postgres uses dollar placeholders", func(t *testing.T) {
		d := dialectFor("postgres")

		query, args, err := d.saveQuery(ScopeUser, "alice", "test-preset")
		require.NoError(t, err)
		require.Equal(t,
			"INSERT INTO scoped_presets (scope,key,preset_id) VALUES ($1,$2,$3) "+
				"ON CONFLICT (scope, key) DO UPDATE SET preset_id = excluded.preset_id, updated_at = CURRENT_TIMESTAMP",
			query)
		require.Equal(t, []any{"user", "alice", "test-preset"}, args)

		query, _, err = d.findQuery(ScopeUser, "alice")
		require.NoError(t, err)
		require.NotContains(t, query, "?")
		require.Contains(t, query, "$1")

		query, _, err = d.deleteQuery(ScopeUser, "alice")
		require.NoError(t, err)
		require.NotContains(t, query, "?")
	})

	t.Run("mysql quotes key and uses duplicate-key upsert", func(t *testing.T) {
		d := dialectFor("mysql")

		query, args, err := d.saveQuery(ScopeUser, "alice", "test-preset")
		require.NoError(t, err)
		require.Equal(t,
			"INSERT INTO scoped_presets (scope,`key`,preset_id) VALUES (?,?,?) "+
				"ON DUPLICATE KEY UPDATE preset_id = VALUES(preset_id), updated_at = CURRENT_TIMESTAMP",
			query)
		require.Equal(t, []any{"user", "alice", "test-preset"}, args)

		query, _, err = d.findQuery(ScopeUser, "alice")
		require.NoError(t, err)
		require.NotContains(t, query, " key ")
		require.Contains(t, query, "`key`")
	})

	t.Run("sqlite uses conflict upsert", func(t *testing.T) {
		d := dialectFor("sqlite")

		query, _, err := d.saveQuery(ScopeUser, "alice", "test-preset")
		require.NoError(t, err)
		require.Contains(t, query, "VALUES (?,?,?)")
		require.Contains(t, query, "ON CONFLICT (scope, key) DO UPDATE SET preset_id = excluded.preset_id")
	})
}
