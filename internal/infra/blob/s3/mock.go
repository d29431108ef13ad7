package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewMockForTests returns a *Store backed by an in-memory fake HTTP
// transport. Only the S3 operations the blob Store interface needs are
// implemented.
func NewMockForTests() *Store {
	rt := &mockRoundTripper{state: make(map[string]mockObj)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &Store{client: client, bucket: "mock-bucket", presign: s3.NewPresignClient(client)}
}

type mockRoundTripper struct{ state map[string]mockObj }

type mockObj struct {
	body        []byte
	contentType string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return m.handleList(req), nil
	}
	switch req.Method {
	case http.MethodHead:
		if obj, ok := m.state[key]; ok {
			return mockResponse(http.StatusOK, nil, http.Header{
				"Content-Length": {strconv.Itoa(len(obj.body))},
				"Content-Type":   {obj.contentType},
				"ETag":           {"\"etag123\""},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}), nil
		}
		return mockResponse(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok { // aws-chunked payload encoding
			body = dec
		}
		if _, exists := m.state[key]; !exists {
			m.state[key] = mockObj{body: body, contentType: req.Header.Get("Content-Type")}
		}
		return mockResponse(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	case http.MethodGet:
		if obj, ok := m.state[key]; ok {
			return mockResponse(http.StatusOK, obj.body, http.Header{
				"Content-Length": {strconv.Itoa(len(obj.body))},
				"Content-Type":   {obj.contentType},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
				"ETag":           {"\"etag\""},
			}), nil
		}
		return mockResponse(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodDelete:
		delete(m.state, key)
		return mockResponse(http.StatusNoContent, nil, http.Header{}), nil
	}
	return mockResponse(http.StatusNotImplemented, nil, http.Header{}), nil
}

func (m *mockRoundTripper) handleList(req *http.Request) *http.Response {
	prefix := req.URL.Query().Get("prefix")
	var keys []string
	for k := range m.state {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?><ListBucketResult><IsTruncated>false</IsTruncated>")
	for _, k := range keys {
		obj := m.state[k]
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(obj.body))
	}
	b.WriteString("</ListBucketResult>")
	return mockResponse(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func mockResponse(status int, body []byte, header http.Header) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}

// decodeChunked decodes a minimal single-chunk aws-chunked payload:
// <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	sz, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || int64(len(parts[1])) != sz || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}
