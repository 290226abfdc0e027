package dictionary

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultReleaseAPI lists jmdict-simplified releases.
const DefaultReleaseAPI = "https://api.github.com/repos/scriptin/jmdict-simplified/releases/latest"

// Downloader fetches the English common jmdict-simplified release.
type Downloader struct {
	Client     *http.Client
	ReleaseAPI string
	UserAgent  string
	Logger     *logrus.Entry
}

// NewDownloader returns a Downloader for the public release feed.
func NewDownloader(logger *logrus.Entry) *Downloader {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Downloader{
		Client:     &http.Client{Timeout: 5 * time.Minute},
		ReleaseAPI: DefaultReleaseAPI,
		UserAgent:  "vocabreader",
		Logger:     logger.WithField("component", "dictionary"),
	}
}

// EnsureDictionary downloads the dictionary to path unless a file is already
// there.
func (d *Downloader) EnsureDictionary(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	d.Logger.WithField("path", path).Info("dictionary missing, downloading")
	assetURL, err := d.latestAssetURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to find latest dictionary release: %w", err)
	}
	d.Logger.WithField("url", assetURL).Info("downloading dictionary")
	return d.downloadAndExtract(ctx, assetURL, path)
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// GitHub rejects requests without a User-Agent
	req.Header.Set("User-Agent", d.UserAgent)
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp, nil
}

func (d *Downloader) latestAssetURL(ctx context.Context) (string, error) {
	resp, err := d.get(ctx, d.ReleaseAPI)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, "jmdict-eng-common") && strings.HasSuffix(asset.Name, ".json.tgz") {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", errors.New("no suitable dictionary asset found in latest release")
}

// downloadAndExtract writes the first JSON file of a .tgz archive to
// destPath. The file appears only once fully written.
func (d *Downloader) downloadAndExtract(ctx context.Context, url, destPath string) error {
	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return errors.New("no json file found in downloaded archive")
		}
		if err != nil {
			return fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag == tar.TypeReg && strings.HasSuffix(header.Name, ".json") {
			return writeAtomic(destPath, tr)
		}
	}
}

func writeAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jmdict-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
