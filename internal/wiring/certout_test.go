package wiring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratastor/eraser/pkg/certificate"
)

func TestWriteCertificateSkipsEmptyPath(t *testing.T) {
	err := WriteCertificate(&certificate.Certificate{SessionID: "sess-1"}, "")
	assert.NoError(t, err)
}

func TestWriteCertificateWritesIndentedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cert.json")
	cert := &certificate.Certificate{SchemaVersion: "1.0", SessionID: "sess-2"}

	require.NoError(t, WriteCertificate(cert, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got certificate.Certificate
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "sess-2", got.SessionID)
}
