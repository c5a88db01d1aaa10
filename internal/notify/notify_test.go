package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/mkostin/shardstore/internal/config"
	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/pkg/clients"
)

func NewMock(t *testing.T, cfg *config.Config) (*Service, *clients.MockHTTPClientI) {
	ctrl := gomock.NewController(t)
	client := clients.NewMockHTTPClientI(ctrl)
	defer ctrl.Finish()
	return New(cfg, client), client
}

func testUser() *domain.User {
	return &domain.User{ID: 1, Login: "player@example.com"}
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:                "0b1f3c1e-9f6a-4a39-8a49-1df06bb2b1c3",
		TotalAmount:       decimal.NewFromFloat(85.5),
		DeliveryShard:     "europa",
		DeliveryCharacter: "Aldric",
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	t.Run("Skipped when not configured", func(t *testing.T) {
		service, _ := NewMock(t, &config.Config{})
		assert.NoError(t, service.SendOrderConfirmation(testUser(), testOrder()))
	})

	t.Run("Confirmation delivered with auth header", func(t *testing.T) {
		cfg := &config.Config{
			EmailAPIURL: "https://mail.example.com/send",
			EmailAPIKey: "email-key",
			EmailFrom:   "store@shardstore.example",
		}
		service, client := NewMock(t, cfg)

		client.EXPECT().
			Post(cfg.EmailAPIURL, "application/json", gomock.Any(), gomock.Any()).
			DoAndReturn(func(url, contentType string, body []byte, headers http.Header) (int, []byte, error) {
				assert.Equal(t, "Bearer email-key", headers.Get("Authorization"))

				var payload emailPayload
				assert.NoError(t, json.Unmarshal(body, &payload))
				assert.Equal(t, "store@shardstore.example", payload.From)
				assert.Equal(t, "player@example.com", payload.To)
				assert.Contains(t, payload.Subject, testOrder().ID)
				assert.Contains(t, payload.Body, "85.50")
				assert.Contains(t, payload.Body, "europa")
				return http.StatusOK, nil, nil
			})

		assert.NoError(t, service.SendOrderConfirmation(testUser(), testOrder()))
	})

	t.Run("Provider rejects the message", func(t *testing.T) {
		cfg := &config.Config{EmailAPIURL: "https://mail.example.com/send"}
		service, client := NewMock(t, cfg)

		client.EXPECT().
			Post(cfg.EmailAPIURL, "application/json", gomock.Any(), gomock.Any()).
			Return(http.StatusUnprocessableEntity, []byte("bad recipient"), nil)

		err := service.SendOrderConfirmation(testUser(), testOrder())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "422")
		assert.Contains(t, err.Error(), "bad recipient")
	})

	t.Run("Transport error", func(t *testing.T) {
		cfg := &config.Config{EmailAPIURL: "https://mail.example.com/send"}
		service, client := NewMock(t, cfg)

		client.EXPECT().
			Post(cfg.EmailAPIURL, "application/json", gomock.Any(), gomock.Any()).
			Return(0, nil, errors.New("connection refused"))

		assert.Error(t, service.SendOrderConfirmation(testUser(), testOrder()))
	})
}

func TestUpsertSubscriber(t *testing.T) {
	t.Run("Skipped when not configured", func(t *testing.T) {
		service, _ := NewMock(t, &config.Config{})
		assert.NoError(t, service.UpsertSubscriber(testUser(), testOrder()))
	})

	t.Run("Subscriber upserted into the list", func(t *testing.T) {
		cfg := &config.Config{
			MailingAPIURL: "https://lists.example.com/3.0",
			MailingAPIKey: "list-key",
			MailingListID: "abc123",
		}
		service, client := NewMock(t, cfg)

		client.EXPECT().
			Post("https://lists.example.com/3.0/lists/abc123/members", "application/json", gomock.Any(), gomock.Any()).
			DoAndReturn(func(url, contentType string, body []byte, headers http.Header) (int, []byte, error) {
				assert.Equal(t, "Bearer list-key", headers.Get("Authorization"))

				var payload subscriberPayload
				assert.NoError(t, json.Unmarshal(body, &payload))
				assert.Equal(t, "player@example.com", payload.EmailAddress)
				assert.Equal(t, "subscribed", payload.Status)
				assert.Equal(t, testOrder().ID, payload.MergeFields["LAST_ORDER"])
				assert.Equal(t, "85.50", payload.MergeFields["LAST_TOTAL"])
				assert.Equal(t, "europa", payload.MergeFields["SHARD"])
				return http.StatusOK, nil, nil
			})

		assert.NoError(t, service.UpsertSubscriber(testUser(), testOrder()))
	})

	t.Run("Provider error surfaces", func(t *testing.T) {
		cfg := &config.Config{MailingAPIURL: "https://lists.example.com/3.0", MailingListID: "abc123"}
		service, client := NewMock(t, cfg)

		client.EXPECT().
			Post(gomock.Any(), "application/json", gomock.Any(), gomock.Any()).
			Return(http.StatusInternalServerError, []byte("oops"), nil)

		assert.Error(t, service.UpsertSubscriber(testUser(), testOrder()))
	})
}
