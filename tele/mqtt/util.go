package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/juju/errors"
)

// TLSFromCaFile builds a client TLS config trusting the given CA bundle.
// Empty path means system roots.
func TLSFromCaFile(path string) (*tls.Config, error) {
	conf := new(tls.Config)
	if path == "" {
		return conf, nil
	}
	cabytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "tls ca file=%s", path)
	}
	conf.RootCAs = x509.NewCertPool()
	if !conf.RootCAs.AppendCertsFromPEM(cabytes) {
		return nil, errors.NotValidf("tls ca file=%s no certificates", path)
	}
	return conf, nil
}
