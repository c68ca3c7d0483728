package sheets

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
)

// ScriptClient talks to the web-exposed script endpoint.
type ScriptClient struct {
	BaseURL  string
	FolderID string
	DryRun   bool // writes are logged, not sent

	http *http.Client
	log  zerolog.Logger
}

func NewScriptClient(baseURL, folderID string, hc *http.Client) *ScriptClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ScriptClient{
		BaseURL:  baseURL,
		FolderID: folderID,
		http:     hc,
		log:      logging.Component("sheets"),
	}
}

type scriptResult struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	FileURL string `json:"fileUrl"`
}

func (c *ScriptClient) Fetch(ctx context.Context, sheet string) (Table, error) {
	q := url.Values{"sheet": {sheet}, "action": {"fetch"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Table{}, &FetchError{Sheet: sheet, Err: err}
	}

	body, err := c.do(req, sheet)
	if err != nil {
		return Table{}, err
	}
	t, err := DecodePayload(body)
	if err != nil {
		return Table{}, &FetchError{Sheet: sheet, Err: err}
	}
	c.log.Debug().Str("sheet", sheet).Int("rows", len(t.Rows)).Msg("[sheets][fetch][ok]")
	return t, nil
}

func (c *ScriptClient) Insert(ctx context.Context, sheet string, row []string) error {
	return c.insert(ctx, sheet, row, false)
}

// InsertBatch sends rows in one request.
func (c *ScriptClient) InsertBatch(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return c.insert(ctx, sheet, rows, true)
}

func (c *ScriptClient) insert(ctx context.Context, sheet string, payload any, batch bool) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &FetchError{Sheet: sheet, Err: err}
	}
	fields := map[string]string{
		"sheetName": sheet,
		"action":    "insert",
		"rowData":   string(data),
	}
	if batch {
		fields["batchInsert"] = "true"
	}

	if c.DryRun {
		c.log.Info().Str("sheet", sheet).Bool("batch", batch).RawJSON("rowData", data).Msg("[sheets][insert][dry-run]")
		return nil
	}

	body, err := c.post(ctx, sheet, fields)
	if err != nil {
		return err
	}
	if res, ok := parseResult(body); ok && res.Success != nil && !*res.Success {
		return &FetchError{Sheet: sheet, Err: errors.New(nonEmpty(res.Error, "insert rejected"))}
	}
	return nil
}

// Upload stores f in the drive folder and returns its URL.
func (c *ScriptClient) Upload(ctx context.Context, f File) (string, error) {
	if c.DryRun {
		c.log.Info().Str("file", f.Name).Int("bytes", len(f.Data)).Msg("[sheets][upload][dry-run]")
		return "", nil
	}

	fields := map[string]string{
		"action":     "uploadFile",
		"base64Data": "data:" + f.MimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data),
		"fileName":   f.Name,
		"mimeType":   f.MimeType,
		"folderId":   c.FolderID,
	}
	body, err := c.post(ctx, "", fields)
	if err != nil {
		return "", &UploadError{FileName: f.Name, Err: err}
	}
	res, ok := parseResult(body)
	if !ok {
		return "", &UploadError{FileName: f.Name, Err: ErrMalformedPayload}
	}
	if res.Success == nil || !*res.Success || res.FileURL == "" {
		return "", &UploadError{FileName: f.Name, Err: errors.New(nonEmpty(res.Error, "upload rejected"))}
	}
	return res.FileURL, nil
}

func (c *ScriptClient) post(ctx context.Context, sheet string, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, &FetchError{Sheet: sheet, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &FetchError{Sheet: sheet, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, &buf)
	if err != nil {
		return nil, &FetchError{Sheet: sheet, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, sheet)
}

func (c *ScriptClient) do(req *http.Request, sheet string) ([]byte, error) {
	return doRequest(c.http, req, sheet)
}

func doRequest(hc *http.Client, req *http.Request, sheet string) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &FetchError{Sheet: sheet, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Sheet: sheet, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Sheet: sheet, Status: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", snippet(body))}
	}
	return body, nil
}

func parseResult(body []byte) (scriptResult, bool) {
	var res scriptResult
	if err := json.Unmarshal(bytes.TrimSpace(body), &res); err != nil {
		return res, false
	}
	return res, true
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
