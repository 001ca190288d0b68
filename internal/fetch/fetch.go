// Package fetch opens post sources: standard input, local files and HTTP(S) URLs.
package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// size limits to prevent memory overload
const (
	MaxFileSizeBytes = 50 * 1024 * 1024  // 50MB limit for files and stdin
	MaxHTTPSizeBytes = 100 * 1024 * 1024 // 100MB limit for HTTP content (may not have Content-Length)
)

// HTTPRequestTimeout bounds a whole HTTP fetch.
const HTTPRequestTimeout = 30 * time.Second

// phase timeouts derived from HTTPRequestTimeout
var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6
	HTTPTLSTimeout            = HTTPRequestTimeout / 6
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2
)

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

// Source is an opened post source.
type Source struct {
	io.ReadCloser
	Name string // "stdin", the URL or the file path
	HTML bool   // content is an HTML document rather than plain text
}

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

// Read returns a size-limit error only once more than N bytes are available;
// content of exactly N bytes reads through to EOF.
func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		var extra [1]byte
		n, err = l.ReadCloser.Read(extra[:])
		if n > 0 {
			return 0, fmt.Errorf("content from %q exceeds size limit", l.source)
		}
		return 0, err
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// sniffedReadCloser reads through a bufio.Reader that already peeked at the content.
type sniffedReadCloser struct {
	*bufio.Reader
	io.Closer
}

// httpClient is shared and safe for concurrent use.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Open opens source, which is one of:
//   - "-" for standard input
//   - a URL starting with "http://" or "https://"
//   - a local file path
//
// HTML is detected from the Content-Type header for URLs, from the extension
// for .html/.htm files, and by sniffing the first bytes otherwise.
func Open(ctx context.Context, source string) (*Source, error) {
	switch {
	case source == "-":
		return sniff(&limitedReadCloser{
			ReadCloser: os.Stdin,
			N:          MaxFileSizeBytes,
			source:     "stdin",
		}, "stdin")
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return fetchURL(ctx, source)
	default:
		return fetchFile(source)
	}
}

// fetchURL retrieves content over HTTP(S).
func fetchURL(ctx context.Context, url string) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "salient/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %q: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed for URL %q: status %d %s", url, resp.StatusCode, resp.Status)
	}

	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxHTTPSizeBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP content too large (%d bytes > %d bytes limit)", size, MaxHTTPSizeBytes)
		}
	}

	body := &limitedReadCloser{
		ReadCloser: resp.Body,
		N:          MaxHTTPSizeBytes,
		source:     url,
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return sniff(body, url)
	}
	return &Source{
		ReadCloser: body,
		Name:       url,
		HTML:       strings.Contains(strings.ToLower(contentType), "html"),
	}, nil
}

// fetchFile opens a local file.
func fetchFile(path string) (*Source, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %q does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}

	if fileInfo.Size() > MaxFileSizeBytes {
		return nil, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit)", path, fileInfo.Size(), MaxFileSizeBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return &Source{ReadCloser: file, Name: path, HTML: true}, nil
	case ".txt", ".text":
		return &Source{ReadCloser: file, Name: path}, nil
	default:
		return sniff(file, path)
	}
}

// sniff peeks at the start of rc to decide whether it holds HTML.
func sniff(rc io.ReadCloser, name string) (*Source, error) {
	br := bufio.NewReaderSize(rc, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		rc.Close()
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}

	return &Source{
		ReadCloser: sniffedReadCloser{Reader: br, Closer: rc},
		Name:       name,
		HTML:       strings.HasPrefix(http.DetectContentType(head), "text/html"),
	}, nil
}
