package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/storage"
	"github.com/syntrixbase/showroom/internal/storage/memory"
)

// sharedStore keeps one memory store alive across several command runs.
type sharedStore struct {
	storage.DocumentStore
}

func (sharedStore) Close(context.Context) error { return nil }

func memoryOpener(store *memory.Store) StoreOpener {
	return func(context.Context, *RootOptions) (storage.DocumentStore, *config.Config, error) {
		return sharedStore{store}, config.Default(), nil
	}
}

func execute(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommandWithOpener(memoryOpener(store))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vehicles.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const threeVehicles = `
vehicles:
  - id: civic-1
    uid: owner-1
    name: Civic
    year: "2019"
    price: 89900
    city: Curitiba
    km: "40000"
    images:
      - {name: front, uid: img-1, url: https://cdn.example/civic.jpg}
  - id: corolla-1
    uid: owner-1
    name: corolla
    year: 2021
    price: "120000"
    images:
      - {name: front, uid: img-2, url: https://cdn.example/corolla.jpg}
  - id: gol-1
    uid: owner-2
    name: Gol
    year: "2012"
    price: 25000
    images:
      - {name: front, uid: img-3, url: https://cdn.example/gol.jpg}
`
