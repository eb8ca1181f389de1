package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

const seedYAML = `
records:
  - id: u-1
    tenant_id: sentiric_demo
    name:
      - value: Ayşe Yılmaz
        primary: true
    email:
      - type: work
        value: ayse@example.com
  - id: u-2
    tel:
      - value: "0555 123 45 67"
`

func TestReadSeed(t *testing.T) {
	records, err := ReadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, &directory.Record{
		ID:       "u-1",
		TenantID: "sentiric_demo",
		Name:     []directory.Entry{{Value: "Ayşe Yılmaz", Primary: true}},
		Email:    []directory.Entry{{Type: "work", Value: "ayse@example.com"}},
	}, records[0])
	assert.Equal(t, "0555 123 45 67", records[1].Tel[0].Value)
}

func TestReadSeedEmptyDocument(t *testing.T) {
	records, err := ReadSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadSeedRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing id": "records:\n  - name: [{value: x}]\n",
		"not yaml":   "records: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSeed(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	m := New(WithPhoneMatching("90", 7))
	n, err := m.LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, m.Len())

	got, err := m.Query(context.Background(), directory.ByIdentity("+90 555 123 4567"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u-2", got[0].ID)

	_, err = m.LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
