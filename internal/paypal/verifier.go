package paypal

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/config"
	"github.com/mkostin/shardstore/pkg/clients"
)

const validateCmd = "cmd=_notify-validate&"

// Verifier authenticates an inbound IPN by posting the raw body back to
// the provider with the validation command prefixed; only an exact
// "VERIFIED" echo counts. Anything else, including a transport error,
// fails closed.
type Verifier struct {
	url        string
	skipVerify bool
	production bool
	client     clients.HTTPClientI
}

func New(cfg *config.Config, client clients.HTTPClientI) *Verifier {
	return &Verifier{
		url:        cfg.PayPalURL,
		skipVerify: cfg.PayPalSkipVerify,
		production: cfg.IsProduction(),
		client:     client,
	}
}

func (v *Verifier) Verify(rawBody string) (bool, error) {
	if v.skipVerify {
		if v.production {
			zap.L().Error("PAYPAL_SKIP_VERIFY is set in production, refusing to bypass verification")
		} else {
			zap.L().Warn("IPN verification bypassed by PAYPAL_SKIP_VERIFY, test mode only")
			return true, nil
		}
	}

	body := validateCmd + rawBody
	statusCode, respBody, err := v.client.Post(v.url, "application/x-www-form-urlencoded", []byte(body), nil)
	if err != nil {
		return false, fmt.Errorf("verification request failed: %w", err)
	}
	if statusCode != http.StatusOK {
		zap.L().Warn("verification endpoint returned unexpected status", zap.Int("status", statusCode))
		return false, nil
	}

	return string(respBody) == "VERIFIED", nil
}
