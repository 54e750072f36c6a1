package oauth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyPEM  string
)

func testPrivateKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		testKey = key
		testKeyPEM = string(pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		}))
	})
	if testKey == nil {
		t.Fatalf("test key unavailable")
	}
	return testKey, testKeyPEM
}

func testAccount(t *testing.T) ServiceAccount {
	_, pemKey := testPrivateKey(t)
	return ServiceAccount{
		ClientEmail:  "chat@project.iam.gserviceaccount.com",
		PrivateKey:   pemKey,
		PrivateKeyID: "key-1",
	}
}
