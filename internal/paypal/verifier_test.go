package paypal

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/mkostin/shardstore/internal/config"
	"github.com/mkostin/shardstore/pkg/clients"
)

const verifyURL = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"

func NewMock(t *testing.T, mutate func(cfg *config.Config)) (*Verifier, *clients.MockHTTPClientI) {
	ctrl := gomock.NewController(t)
	client := clients.NewMockHTTPClientI(ctrl)
	cfg := &config.Config{
		Environment: "development",
		PayPalURL:   verifyURL,
	}
	if mutate != nil {
		mutate(cfg)
	}
	defer ctrl.Finish()
	return New(cfg, client), client
}

func TestVerify(t *testing.T) {
	rawBody := "payment_status=Completed&txn_id=9XJ12345"
	echoed := []byte(validateCmd + rawBody)

	tests := []struct {
		name        string
		prepareMock func(client *clients.MockHTTPClientI)
		verified    bool
		expectError bool
	}{
		{
			name: "Provider confirms the notification",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().
					Post(verifyURL, "application/x-www-form-urlencoded", echoed, gomock.Nil()).
					Return(http.StatusOK, []byte("VERIFIED"), nil)
			},
			verified: true,
		},
		{
			name: "Provider rejects the notification",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().
					Post(verifyURL, "application/x-www-form-urlencoded", echoed, gomock.Nil()).
					Return(http.StatusOK, []byte("INVALID"), nil)
			},
			verified: false,
		},
		{
			name: "Unexpected status fails closed",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().
					Post(verifyURL, "application/x-www-form-urlencoded", echoed, gomock.Nil()).
					Return(http.StatusServiceUnavailable, nil, nil)
			},
			verified: false,
		},
		{
			name: "Transport error",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().
					Post(verifyURL, "application/x-www-form-urlencoded", echoed, gomock.Nil()).
					Return(0, nil, errors.New("connection refused"))
			},
			verified:    false,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, client := NewMock(t, nil)
			tt.prepareMock(client)

			verified, err := verifier.Verify(rawBody)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.verified, verified)
		})
	}
}

func TestVerifySkip(t *testing.T) {
	t.Run("Bypass honored outside production", func(t *testing.T) {
		verifier, _ := NewMock(t, func(cfg *config.Config) {
			cfg.PayPalSkipVerify = true
		})

		verified, err := verifier.Verify("payment_status=Completed")
		assert.NoError(t, err)
		assert.True(t, verified)
	})

	t.Run("Bypass refused in production", func(t *testing.T) {
		verifier, client := NewMock(t, func(cfg *config.Config) {
			cfg.PayPalSkipVerify = true
			cfg.Environment = config.EnvProduction
		})
		client.EXPECT().
			Post(verifyURL, "application/x-www-form-urlencoded", gomock.Any(), gomock.Nil()).
			Return(http.StatusOK, []byte("VERIFIED"), nil)

		verified, err := verifier.Verify("payment_status=Completed")
		assert.NoError(t, err)
		assert.True(t, verified)
	})
}
