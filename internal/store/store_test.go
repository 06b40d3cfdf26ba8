package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoftp/internal/config"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := Open(&config.StoreConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore_HostUpsert(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddHost(ctx, "10.0.0.5", 21, "vsFTPd 3.0.3"))
			require.NoError(t, s.AddHost(ctx, "10.0.0.5", 21, "vsFTPd 3.0.5"))
			require.NoError(t, s.AddHost(ctx, "10.0.0.5", 2121, ""))

			hosts, err := s.ListHosts(ctx)
			require.NoError(t, err)
			require.Len(t, hosts, 2)
			assert.Equal(t, "vsFTPd 3.0.5", hosts[0].Banner)
			assert.Equal(t, 2121, hosts[1].Port)

			id, err := s.GetHostID(ctx, "10.0.0.5", 21)
			require.NoError(t, err)
			assert.Equal(t, hosts[0].ID, id)

			_, err = s.GetHostID(ctx, "10.0.0.6", 21)
			assert.ErrorIs(t, err, ErrHostNotFound)
		})
	}
}

func TestStore_CredentialDedup(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			a, err := s.AddCredential(ctx, "alice", "secret1")
			require.NoError(t, err)
			b, err := s.AddCredential(ctx, "alice", "secret1")
			require.NoError(t, err)
			assert.Equal(t, a, b)

			anon, err := s.AddCredential(ctx, "", "")
			require.NoError(t, err)
			assert.NotEqual(t, a, anon)

			other, err := s.AddCredential(ctx, "alice", "")
			require.NoError(t, err)
			assert.NotEqual(t, anon, other)

			creds, err := s.ListCredentials(ctx)
			require.NoError(t, err)
			assert.Len(t, creds, 3)
		})
	}
}

func TestStore_LoginRelation(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddHost(ctx, "10.0.0.5", 21, "banner"))
			credID, err := s.AddCredential(ctx, "alice", "secret1")
			require.NoError(t, err)
			hostID, err := s.GetHostID(ctx, "10.0.0.5", 21)
			require.NoError(t, err)

			require.NoError(t, s.AddLoginRelation(ctx, credID, hostID))
			require.NoError(t, s.AddLoginRelation(ctx, credID, hostID))

			rels, err := s.ListLoginRelations(ctx)
			require.NoError(t, err)
			require.Len(t, rels, 1)
			assert.Equal(t, credID, rels[0].CredentialID)
			assert.Equal(t, hostID, rels[0].HostID)

			creds, err := s.ListCredentials(ctx)
			require.NoError(t, err)
			require.Len(t, creds, 1)
			assert.Equal(t, 1, creds[0].Logins)
		})
	}
}

func TestStore_WithTxRollback(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.WithTx(ctx, func(tx Sink) error {
				require.NoError(t, tx.AddHost(ctx, "10.0.0.9", 21, "x"))
				_, err := tx.AddCredential(ctx, "bob", "pw")
				require.NoError(t, err)
				return boom
			})
			assert.ErrorIs(t, err, boom)

			hosts, err := s.ListHosts(ctx)
			require.NoError(t, err)
			assert.Empty(t, hosts)
			creds, err := s.ListCredentials(ctx)
			require.NoError(t, err)
			assert.Empty(t, creds)
		})
	}
}

func TestStore_WithTxCommit(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.WithTx(ctx, func(tx Sink) error {
				if err := tx.AddHost(ctx, "10.0.0.5", 21, "b"); err != nil {
					return err
				}
				credID, err := tx.AddCredential(ctx, "alice", "secret1")
				if err != nil {
					return err
				}
				hostID, err := tx.GetHostID(ctx, "10.0.0.5", 21)
				if err != nil {
					return err
				}
				return tx.AddLoginRelation(ctx, credID, hostID)
			})
			require.NoError(t, err)

			rels, err := s.ListLoginRelations(ctx)
			require.NoError(t, err)
			assert.Len(t, rels, 1)
		})
	}
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					host := fmt.Sprintf("10.0.1.%d", i%4)
					assert.NoError(t, s.AddHost(ctx, host, 21, "banner"))
					_, err := s.AddCredential(ctx, "anonymous", "")
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			hosts, err := s.ListHosts(ctx)
			require.NoError(t, err)
			assert.Len(t, hosts, 4)
			creds, err := s.ListCredentials(ctx)
			require.NoError(t, err)
			assert.Len(t, creds, 1)
		})
	}
}

func TestOpen_SqliteFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "data", "ftp.db")
	s, err := Open(&config.StoreConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, s.AddHost(context.Background(), "h", 21, "b"))
	require.NoError(t, s.Close())

	s, err = Open(&config.StoreConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	defer s.Close()
	hosts, err := s.ListHosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, hosts, 1)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
	_, err = Open(&config.StoreConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported store driver")

	s, err := Open(&config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}
