package twilio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-report-ingest/internal/config"
	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
	"github.com/couchcryptid/hazard-report-ingest/internal/observability"
)

// extByContentType maps the gateway's declared media content types to file
// extensions. Unknown types fall back to ".bin".
var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/3gpp":      ".3gp",
	"audio/ogg":       ".ogg",
	"audio/amr":       ".amr",
	"audio/mpeg":      ".mp3",
	"application/pdf": ".pdf",
	"text/vcard":      ".vcf",
}

const fallbackExt = ".bin"

// MediaFetcher downloads webhook media attachments into the local media
// directory. Every failure mode degrades to a nil result with a log line;
// media must never abort ingestion of the already-persisted report.
type MediaFetcher struct {
	accountSID string
	authToken  string
	mediaDir   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewMediaFetcher creates a MediaFetcher storing files under cfg.MediaDir.
func NewMediaFetcher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *MediaFetcher {
	return &MediaFetcher{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		mediaDir:   cfg.MediaDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads the attachment for a report and returns its stored metadata,
// or nil when the attachment was skipped or unavailable. The filename embeds
// the report ID and download timestamp so reprocessing the same report cannot
// collide with an earlier download.
func (f *MediaFetcher) Fetch(ctx context.Context, mediaURL, contentType, reportID string) *domain.Media {
	if mediaURL == "" || f.accountSID == "" || f.authToken == "" {
		f.metrics.MediaDownloads.WithLabelValues("skipped").Inc()
		return nil
	}

	data, err := f.download(ctx, mediaURL)
	if err != nil {
		f.metrics.MediaDownloads.WithLabelValues("error").Inc()
		f.logger.Warn("media download failed", "report_id", reportID, "url", mediaURL, "error", err)
		return nil
	}

	filename := fmt.Sprintf("report-%s-%d%s", reportID, domain.Now().UnixMilli(), extensionFor(contentType))
	path := filepath.Join(f.mediaDir, filename)

	if err := os.MkdirAll(f.mediaDir, 0o755); err != nil {
		f.metrics.MediaDownloads.WithLabelValues("error").Inc()
		f.logger.Warn("create media dir failed", "dir", f.mediaDir, "error", err)
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.metrics.MediaDownloads.WithLabelValues("error").Inc()
		f.logger.Warn("write media file failed", "path", path, "error", err)
		return nil
	}

	f.metrics.MediaDownloads.WithLabelValues("success").Inc()
	return &domain.Media{
		Filename:    filename,
		Filepath:    path,
		Size:        int64(len(data)),
		ContentType: contentType,
		URL:         "/media/" + filename,
	}
}

func (f *MediaFetcher) download(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(f.accountSID, f.authToken)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("media fetch status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	return data, nil
}

// extensionFor maps a declared content type to a file extension, ignoring any
// parameters ("image/jpeg; charset=..." still maps to ".jpg").
func extensionFor(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	if ext, ok := extByContentType[strings.ToLower(strings.TrimSpace(base))]; ok {
		return ext
	}
	return fallbackExt
}
