package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLSHost(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "plain host", baseURL: "https://sho.rt", want: "sho.rt"},
		{name: "host with port", baseURL: "https://sho.rt:8443/", want: "sho.rt"},
		{name: "host with path", baseURL: "http://links.example.com/s", want: "links.example.com"},
		{name: "no scheme", baseURL: "sho.rt", wantErr: true},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "unparsable", baseURL: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tlsHost(tt.baseURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIgnoreClosed(t *testing.T) {
	assert.NoError(t, ignoreClosed(nil))
	assert.NoError(t, ignoreClosed(http.ErrServerClosed))
	assert.NoError(t, ignoreClosed(fmt.Errorf("serve: %w", http.ErrServerClosed)))

	boom := errors.New("address already in use")
	assert.ErrorIs(t, ignoreClosed(boom), boom)
}
