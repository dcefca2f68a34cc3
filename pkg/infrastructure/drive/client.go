// Package drive fetches takeout exports straight from a user's Google Drive
// using the short-lived access token the client obtained from the picker.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	httputil "github.com/roamly/server/pkg/infrastructure/http"
)

const filesEndpoint = "https://www.googleapis.com/drive/v3/files"

// Client downloads Drive file content. The zero value is not usable; build
// one per request with the caller's token.
type Client struct {
	http *http.Client
}

// NewClient wraps the user's access token in an OAuth2 transport. The token
// is consumed as-is and never refreshed; identity handling stays client-side.
func NewClient(ctx context.Context, accessToken string) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return &Client{http: oauth2.NewClient(ctx, source)}
}

// FetchFile downloads a file's raw media content and reports its content type.
func (c *Client) FetchFile(ctx context.Context, fileID string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/%s?alt=media", filesEndpoint, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("drive: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("drive: fetch file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if err := httputil.ParseErrorResponse(resp); err != nil {
		return nil, "", fmt.Errorf("drive: fetch file %s: %w", fileID, err)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("drive: read file %s: %w", fileID, err)
	}
	return content, resp.Header.Get("Content-Type"), nil
}
