package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "states_data_2026-03-07.xlsx", Filename("states", now))
	require.Equal(t, "warranty_codes_data_2026-03-07.xlsx", Filename("warranty_codes", now))
}

func TestSaveWritesBlobUnderDir(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	path, err := Save(dir, "dealers", []byte("blob"), now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "dealers_data_2026-03-07.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "blob", string(data))
}

func TestSaveFailsOnMissingDir(t *testing.T) {
	_, err := Save(filepath.Join(t.TempDir(), "absent"), "dealers", []byte("blob"), time.Now())
	require.Error(t, err)
}
