package notify

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mkostin/shardstore/internal/config"
	"github.com/mkostin/shardstore/internal/domain"
	"github.com/mkostin/shardstore/pkg/clients"
)

// Service wraps the transactional-email and mailing-list provider APIs.
// Both calls are best-effort from the caller's point of view: errors are
// returned for logging but never block order reconciliation.
type Service struct {
	cfg    *config.Config
	client clients.HTTPClientI
}

func New(cfg *config.Config, client clients.HTTPClientI) *Service {
	return &Service{
		cfg:    cfg,
		client: client,
	}
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Service) SendOrderConfirmation(user *domain.User, order *domain.Order) error {
	if s.cfg.EmailAPIURL == "" {
		zap.L().Debug("email delivery not configured, skipping confirmation")
		return nil
	}

	payload := emailPayload{
		From:    s.cfg.EmailFrom,
		To:      user.Login,
		Subject: fmt.Sprintf("Order %s confirmed", order.ID),
		Body: fmt.Sprintf("Your order %s for %s was paid. Delivery to %q on shard %s.",
			order.ID, order.TotalAmount.StringFixed(2), order.DeliveryCharacter, order.DeliveryShard),
	}
	return s.post(s.cfg.EmailAPIURL, s.cfg.EmailAPIKey, payload)
}

type subscriberPayload struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields"`
}

func (s *Service) UpsertSubscriber(user *domain.User, order *domain.Order) error {
	if s.cfg.MailingAPIURL == "" {
		zap.L().Debug("mailing list not configured, skipping upsert")
		return nil
	}

	payload := subscriberPayload{
		EmailAddress: user.Login,
		Status:       "subscribed",
		MergeFields: map[string]string{
			"LAST_ORDER": order.ID,
			"LAST_TOTAL": order.TotalAmount.StringFixed(2),
			"SHARD":      order.DeliveryShard,
		},
	}
	url := fmt.Sprintf("%s/lists/%s/members", s.cfg.MailingAPIURL, s.cfg.MailingListID)
	return s.post(url, s.cfg.MailingAPIKey, payload)
}

func (s *Service) post(url, apiKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("can't marshal payload: %w", err)
	}

	headers := http.Header{}
	if apiKey != "" {
		headers.Set("Authorization", "Bearer "+apiKey)
	}

	statusCode, respBody, err := s.client.Post(url, "application/json", body, headers)
	if err != nil {
		return err
	}
	if statusCode >= http.StatusBadRequest {
		return fmt.Errorf("provider returned %d: %s", statusCode, string(respBody))
	}
	return nil
}
