package wiring

import (
	"encoding/json"
	"os"

	"github.com/stratastor/eraser/pkg/certificate"
)

// WriteCertificate marshals cert as indented JSON to path. An empty
// path is a no-op so callers can make --cert-output optional.
func WriteCertificate(cert *certificate.Certificate, path string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(cert, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
