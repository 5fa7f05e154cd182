package exchanger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpClientTimeout = 5 * time.Second

type httpExchangeClient struct{}

func newHTTPClient() *httpExchangeClient {
	return &httpExchangeClient{}
}

func (c httpExchangeClient) PostForm(ctx context.Context, targetURL string, form url.Values) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for POST %s: %s", targetURL, err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	return c.send(httpReq)
}

func (c httpExchangeClient) GetJSON(ctx context.Context, targetURL string, bearerToken string) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for GET %s: %s", targetURL, err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+bearerToken)
	httpReq.Header.Set("Accept", "application/json")

	return c.send(httpReq)
}

func (c httpExchangeClient) send(httpReq *http.Request) (int, []byte, error) {
	httpClient := &http.Client{
		Timeout: httpClientTimeout,
	}

	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error calling %s %s: %s", httpReq.Method, httpReq.URL, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response of %s %s: %s", httpReq.Method, httpReq.URL, err)
	}

	return httpResp.StatusCode, respPayload, nil
}
