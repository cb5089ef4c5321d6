//nolint:lll // readability
package traefik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		domain  string
		cert    string
		key     string
		wantErr error
	}{
		{
			name:   "main domain",
			data:   `{"le":{"Certificates":[{"domain":{"main":"timer.example"}, "certificate": "cert1", "key": "key1"}]}}`,
			domain: "timer.example",
			cert:   "cert1",
			key:    "key1",
		},
		{
			name:   "wildcard",
			data:   `{"myresolver":{"Certificates":[{"domain":{"main":"*.example.com"}, "certificate": "cert1", "key": "key1"}]}}`,
			domain: "*.example.com",
			cert:   "cert1",
			key:    "key1",
		},
		{
			name:   "alternative name",
			data:   `{"le":{"Certificates":[{"domain":{"main":"a.example","sans":["overlay.example"]}, "certificate": "cert2", "key": "key2"}]}}`,
			domain: "overlay.example",
			cert:   "cert2",
			key:    "key2",
		},
		{
			name:    "unknown domain",
			data:    `{"le":{"Certificates":[{"domain":{"main":"timer.example"}, "certificate": "cert1", "key": "key1"}]}}`,
			domain:  "other.example",
			wantErr: ErrDomainNotFound,
		},
		{
			name:    "empty store",
			data:    `{}`,
			domain:  "timer.example",
			wantErr: ErrDomainNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := lookup([]byte(tt.data), tt.domain)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cert, entry.Certificate)
			assert.Equal(t, tt.key, entry.Key)
		})
	}
}

func TestParseCertificateInvalidBase64(t *testing.T) {
	data := `{"le":{"Certificates":[{"domain":{"main":"timer.example"}, "certificate": "%%%", "key": "key1"}]}}`
	_, err := ParseCertificate([]byte(data), "timer.example")
	assert.Error(t, err)
}
