package network

import (
	"crypto/x509"
	"net"
	"testing"
)

func TestCertHosts(t *testing.T) {
	ips, names := certHosts("10.0.0.7")
	if len(ips) != 1 || !ips[0].Equal(net.ParseIP("10.0.0.7")) || len(names) != 0 {
		t.Fatalf("unexpected names for an IP host: %v %v", ips, names)
	}
	ips, names = certHosts("ledger.example")
	if len(ips) != 0 || len(names) != 1 || names[0] != "ledger.example" {
		t.Fatalf("unexpected names for a DNS host: %v %v", ips, names)
	}
	for _, wildcard := range []string{"", "0.0.0.0", "::"} {
		ips, names = certHosts(wildcard)
		if len(ips) != 2 || len(names) != 1 || names[0] != "localhost" {
			t.Fatalf("%q: expected loopback names, got %v %v", wildcard, ips, names)
		}
	}
}

func TestGenerateSelfSignedCertWildcard(t *testing.T) {
	cert, _, err := GenerateSelfSignedCert("0.0.0.0:5000")
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	if err := leaf.VerifyHostname("127.0.0.1"); err != nil {
		t.Fatalf("certificate should cover loopback: %v", err)
	}
	if err := leaf.VerifyHostname("localhost"); err != nil {
		t.Fatalf("certificate should cover localhost: %v", err)
	}
}

func TestGenerateSelfSignedCertBadAddress(t *testing.T) {
	if _, _, err := GenerateSelfSignedCert("no-port"); err == nil {
		t.Fatal("expected an error for an address without port")
	}
}
