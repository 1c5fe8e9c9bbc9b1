package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/apitests/reqres-contract-tests/framework"
)

// Recorder is where a request's diagnostics go. framework.Context implements it.
type Recorder interface {
	Attach(framework.Attachment)
	DebugLogger() framework.Logger
}

// Client sends requests to a fixed base address. It keeps no connection state between
// calls: each request gets its own transport, which is released before the call returns.
type Client struct {
	baseURL        string
	defaultHeaders http.Header
}

// RequestOption customizes a single request.
type RequestOption func(*requestParams)

type requestParams struct {
	header http.Header
	query  url.Values
	body   []byte
	err    error
}

// NewClient creates a Client. Every request path is appended to baseURL as-is, and the
// default headers (which may be nil) are added to every request made with Request.
func NewClient(baseURL string, defaultHeaders http.Header) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		defaultHeaders: defaultHeaders.Clone(),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Header adds a request header.
func Header(name, value string) RequestOption {
	return func(p *requestParams) {
		p.header.Add(name, value)
	}
}

// QueryParam adds a query parameter.
func QueryParam(name, value string) RequestOption {
	return func(p *requestParams) {
		p.query.Add(name, value)
	}
}

// Query adds all of the specified query parameters.
func Query(values url.Values) RequestOption {
	return func(p *requestParams) {
		for name, vv := range values {
			for _, v := range vv {
				p.query.Add(name, v)
			}
		}
	}
}

// Form sends the values as a form-encoded body.
func Form(values url.Values) RequestOption {
	return func(p *requestParams) {
		p.header.Set("Content-Type", "application/x-www-form-urlencoded")
		p.body = []byte(values.Encode())
	}
}

// JSON sends the JSON encoding of v as the body.
func JSON(v interface{}) RequestOption {
	return func(p *requestParams) {
		data, err := json.Marshal(v)
		if err != nil {
			p.err = fmt.Errorf("could not encode request body: %w", err)
			return
		}
		p.header.Set("Content-Type", "application/json")
		p.body = data
	}
}

// RawBody sends the body exactly as given, which need not be valid for the content type.
func RawBody(contentType string, body string) RequestOption {
	return func(p *requestParams) {
		if contentType != "" {
			p.header.Set("Content-Type", contentType)
		}
		p.body = []byte(body)
	}
}

// Request performs exactly one HTTP request to the base address plus path, and returns the
// response without interpreting its status. A reproduction of the request and the response
// body are attached to the recorder.
//
// Transport errors are returned unchanged; there are no retries.
func (c *Client) Request(
	ctx context.Context,
	rec Recorder,
	method string,
	path string,
	options ...RequestOption,
) (*Response, error) {
	params := requestParams{header: c.defaultHeaders.Clone(), query: url.Values{}}
	if params.header == nil {
		params.header = make(http.Header)
	}
	for _, o := range options {
		o(&params)
	}
	if params.err != nil {
		return nil, params.err
	}

	fullURL := c.baseURL + path
	if len(params.query) > 0 {
		separator := "?"
		if strings.Contains(fullURL, "?") {
			separator = "&"
		}
		fullURL += separator + params.query.Encode()
	}

	resp, err := c.do(ctx, rec, method, fullURL, params)
	if err != nil {
		return nil, err
	}
	rec.Attach(responseBodyAttachment(resp))
	return resp, nil
}

// Download fetches an absolute URL and writes the response body to destPath, regardless of
// the response status. Default headers are not sent, since the URL may point anywhere.
func (c *Client) Download(ctx context.Context, rec Recorder, fileURL string, destPath string) (*Response, error) {
	params := requestParams{header: make(http.Header), query: url.Values{}}
	resp, err := c.do(ctx, rec, http.MethodGet, fileURL, params)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(destPath, resp.Body, 0644); err != nil {
		return nil, fmt.Errorf("could not save downloaded file: %w", err)
	}
	rec.Attach(framework.TextAttachment("Downloaded File",
		[]byte(fmt.Sprintf("%s (%s, %s)", destPath, resp.ContentType(), humanize.Bytes(uint64(len(resp.Body)))))))
	return resp, nil
}

func (c *Client) do(
	ctx context.Context,
	rec Recorder,
	method string,
	fullURL string,
	params requestParams,
) (*Response, error) {
	logger := rec.DebugLogger()

	var body io.Reader
	if params.body != nil {
		body = bytes.NewReader(params.body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header = params.header

	rec.Attach(framework.TextAttachment("Curl", []byte(ToCurl(req, params.body))))
	logger.Printf("%s %s", req.Method, req.URL)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	defer transport.CloseIdleConnections()
	httpClient := &http.Client{Transport: transport}

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Printf("Request failed: %s", err)
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		logger.Printf("Error reading response body: %s", err)
		return nil, err
	}
	logger.Printf("Response: %s (%s)", resp.Status, humanize.Bytes(uint64(len(data))))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
