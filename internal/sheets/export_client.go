package sheets

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ExportClient reads partitions through the spreadsheet's query export.
// It is read-only.
type ExportClient struct {
	BaseURL       string
	SpreadsheetID string

	http *http.Client
}

func NewExportClient(baseURL, spreadsheetID string, hc *http.Client) *ExportClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ExportClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		SpreadsheetID: spreadsheetID,
		http:          hc,
	}
}

func (c *ExportClient) Fetch(ctx context.Context, sheet string) (Table, error) {
	u := c.BaseURL + "/" + url.PathEscape(c.SpreadsheetID) + "/gviz/tq?" +
		url.Values{"tqx": {"out:json"}, "sheet": {sheet}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Table{}, &FetchError{Sheet: sheet, Err: err}
	}
	body, err := doRequest(c.http, req, sheet)
	if err != nil {
		return Table{}, err
	}
	t, err := DecodePayload(body)
	if err != nil {
		return Table{}, &FetchError{Sheet: sheet, Err: err}
	}
	return t, nil
}
