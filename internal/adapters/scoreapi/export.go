package scoreapi

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"regexp"
	"strings"

	"github.com/okian/scoreview/pkg/metrics"
)

// DefaultExportName is used when the backend does not name the download.
const DefaultExportName = "export"

// Download is a rendered export file.
type Download struct {
	Filename    string
	ContentType string
	Size        int64
	Body        []byte
}

// Export downloads the contest rendered in q.Format.
func (c *Client) Export(ctx context.Context, path string, q ExportQuery) (*Download, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	q.Group = OptionalGroup(q.Group)
	u, err := c.url(EndpointExport, path, q)
	if err != nil {
		return nil, err
	}

	resp, cancel, elapsed, err := c.open(ctx, EndpointExport, u)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPIRequest(EndpointExport, metrics.OutcomeError, elapsed)
		return nil, fmt.Errorf("%w: read export: %w", ErrTransport, err)
	}
	metrics.RecordAPIRequest(EndpointExport, metrics.OutcomeOK, elapsed)

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Download{
		Filename:    ExportFilename(resp.Header.Get("Content-Disposition"), q.Format),
		ContentType: ct,
		Size:        int64(len(body)),
		Body:        body,
	}, nil
}

var dispositionName = regexp.MustCompile(`(?i)filename\*?\s*=\s*("[^"]*"|[^;]+)`)

// ExportFilename extracts the download name from a Content-Disposition
// header. Encoded words and percent escapes are decoded. Without a name the
// result is "export", and format is appended when the name has no extension.
func ExportFilename(disposition, format string) string {
	name := ""
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = params["filename"]
	} else if m := dispositionName.FindStringSubmatch(disposition); m != nil {
		name = m[1]
		if i := strings.Index(name, "''"); i >= 0 && !strings.HasPrefix(name, "=?") {
			name = name[i+2:]
		}
	}
	name = decodeFilename(strings.Trim(strings.TrimSpace(name), `"`))

	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = DefaultExportName
	}
	if format != "" && !strings.Contains(name, ".") {
		name += "." + format
	}
	return name
}

func decodeFilename(name string) string {
	if strings.Contains(name, "=?") {
		dec := new(mime.WordDecoder)
		if s, err := dec.DecodeHeader(name); err == nil {
			name = s
		}
	}
	if strings.Contains(name, "%") {
		if s, err := url.PathUnescape(name); err == nil {
			name = s
		}
	}
	return name
}
