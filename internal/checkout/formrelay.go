package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/perfura/storefront/internal/models"
)

const (
	ChannelFormRelay     = "form-relay"
	ChannelFormAPI       = "form-api"
	ChannelLocalFallback = "local-fallback"
)

// FormRelay posts the order to a hosted form-to-email relay.
type FormRelay struct {
	client     *http.Client
	endpoint   string
	siteOrigin string
}

func NewFormRelay(client *http.Client, endpoint, siteOrigin string) *FormRelay {
	return &FormRelay{client: client, endpoint: endpoint, siteOrigin: siteOrigin}
}

func (r *FormRelay) Name() string { return ChannelFormRelay }

func (r *FormRelay) Attempt(ctx context.Context, order models.OrderData) error {
	details, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	form := url.Values{}
	form.Set("_replyto", order.CustomerInfo.Email)
	form.Set("_subject", Subject(order))
	form.Set("_captcha", "false")
	form.Set("_next", strings.TrimRight(r.siteOrigin, "/")+"/thank-you")
	form.Set("order_details", string(details))

	resp, err := postForm(ctx, r.client, r.endpoint, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay responded %s", resp.Status)
	}
	return nil
}

func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	return resp, nil
}
