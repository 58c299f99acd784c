// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Certificate-hash resolution (C14): an external-collaborator seam. Scanning
// an OS certificate store for a SHA-1 thumbprint match is out of scope (see
// spec §1 Non-goals); this file defines the interface plus a trivial
// file-backed implementation for local testing.

package webtransport

import (
	"context"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// CertificateHashResolver resolves a certificate by the hex-encoded SHA-1
// thumbprint a caller passes on the command line (the `-cert_hash:` flag in
// spec §6). Implementations backed by an OS certificate store are an
// external collaborator this module does not provide.
type CertificateHashResolver interface {
	ResolveBySHA1Thumbprint(ctx context.Context, hexThumbprint string) (tls.Certificate, error)
}

// FileThumbprintResolver resolves a certificate loaded from a fixed
// cert/key file pair, accepting it only if its SHA-1 thumbprint matches the
// requested hex string. It exists for integration tests that need a
// CertificateHashResolver without an OS certificate store; production
// deployments should supply their own implementation backed by one.
type FileThumbprintResolver struct {
	CertFile CertFile
	KeyFile  CertFile
}

// ResolveBySHA1Thumbprint loads the configured certificate/key pair and
// returns it if its leaf certificate's SHA-1 thumbprint equals
// hexThumbprint (case-insensitive).
func (f FileThumbprintResolver) ResolveBySHA1Thumbprint(_ context.Context, hexThumbprint string) (tls.Certificate, error) {
	var cert tls.Certificate
	var err error
	if f.CertFile.isFilePath() && f.KeyFile.isFilePath() {
		cert, err = tls.LoadX509KeyPair(f.CertFile.Path, f.KeyFile.Path)
	} else {
		cert, err = tls.X509KeyPair(f.CertFile.Data, f.KeyFile.Data)
	}
	if err != nil {
		return tls.Certificate{}, err
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, err
	}

	sum := sha1.Sum(leaf.Raw)
	got := hex.EncodeToString(sum[:])
	want, err := hex.DecodeString(hexThumbprint)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("invalid thumbprint %q: %w", hexThumbprint, err)
	}
	if got != hex.EncodeToString(want) {
		return tls.Certificate{}, fmt.Errorf("no certificate matching thumbprint %s", hexThumbprint)
	}
	return cert, nil
}
