// Package main writes a development CA and a localhost server certificate
// under the "certs" directory for the login stub server.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/markadai/taxidispatch/internal/certgen"
)

var serverHosts = []string{"localhost", "127.0.0.1"}

func main() {
	if err := run("certs"); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Println("✅ Certificates generated into ./certs")
}

// run reuses dir/ca.crt and dir/ca.key when both exist and always issues a
// fresh server pair.
func run(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	caCertPath := filepath.Join(dir, "ca.crt")
	caKeyPath := filepath.Join(dir, "ca.key")

	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if errors.Is(err, fs.ErrNotExist) {
		certPEM, keyPEM, genErr := certgen.GenerateCA("Taxi Dispatch Dev CA")
		if genErr != nil {
			return genErr
		}
		if err := writePair(caCertPath, caKeyPath, certPEM, keyPEM); err != nil {
			return err
		}
		caCert, caKey, err = certgen.ParseCACredentials(certPEM, keyPEM)
	}
	if err != nil {
		return err
	}

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(serverHosts, caCert, caKey)
	if err != nil {
		return err
	}
	return writePair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), certPEM, keyPEM)
}

func writePair(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", keyPath, err)
	}
	return nil
}
