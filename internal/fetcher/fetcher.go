// Package fetcher retrieves roster files from local paths, HTTP, and FTP
// sources, and parses CSV and XLSX content.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a remote roster file.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Open returns a reader for a roster source, dispatching on scheme:
// http(s):// and ftp:// are fetched remotely, anything else is treated
// as a local file path.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return NewHTTPFetcher(HTTPOptions{}).Download(ctx, source)
		case "ftp":
			return NewFTPFetcher(FTPOptions{}).Download(ctx, source)
		}
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", source)
	}
	return f, nil
}
