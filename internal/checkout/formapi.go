package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/perfura/storefront/internal/models"
)

// FormAPI posts the order to a keyed form-submission API. The API reports
// acceptance in its JSON body, so a 2xx alone is not enough.
type FormAPI struct {
	client    *http.Client
	endpoint  string
	accessKey string
	fromName  string
	recipient string
}

func NewFormAPI(client *http.Client, endpoint, accessKey, fromName, recipient string) *FormAPI {
	return &FormAPI{
		client:    client,
		endpoint:  endpoint,
		accessKey: accessKey,
		fromName:  fromName,
		recipient: recipient,
	}
}

func (a *FormAPI) Name() string { return ChannelFormAPI }

type formAPIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *FormAPI) Attempt(ctx context.Context, order models.OrderData) error {
	body, err := EmailBody(order)
	if err != nil {
		return fmt.Errorf("render message: %w", err)
	}

	form := url.Values{}
	form.Set("access_key", a.accessKey)
	form.Set("from_name", a.fromName)
	form.Set("email", order.CustomerInfo.Email)
	form.Set("subject", Subject(order))
	form.Set("message", body)
	form.Set("to", a.recipient)

	resp, err := postForm(ctx, a.client, a.endpoint, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("form api responded %s", resp.Status)
	}

	var result formAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return fmt.Errorf("decode form api response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("form api rejected order: %s", result.Message)
	}
	return nil
}
