package infra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

func ParseSigningKey(privateKeyString string) (*rsa.PrivateKey, error) {
	// when a multi-line env variable is passed to the docker container by docker-compose, it escapes the newlines
	privateKeyString = strings.ReplaceAll(privateKeyString, "\\n", "\n")
	block, _ := pem.Decode([]byte(privateKeyString))
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing RSA private key")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("signing key is not an RSA key")
		}
		return rsaKey, nil
	}
	return nil, errors.Newf("unexpected PEM block type %s", block.Type)
}

// ReadParseOrGenerateSigningKey loads the jwt signing key from the value, or from the file, or
// generates an ephemeral one (tokens do not survive restarts then).
func ReadParseOrGenerateSigningKey(logger *slog.Logger, key, keyFile string) (*rsa.PrivateKey, error) {
	switch {
	case key != "":
		return ParseSigningKey(key)
	case keyFile != "":
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read signing key file %s", keyFile)
		}
		return ParseSigningKey(string(content))
	}

	logger.Warn("no jwt signing key configured, generating an ephemeral one")
	return rsa.GenerateKey(rand.Reader, 2048)
}
