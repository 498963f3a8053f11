package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	perrors "github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations"
)

// DefaultBaseURL is the root of the PyPI JSON API.
const DefaultBaseURL = "https://pypi.org/pypi"

// Document is the subset of a PyPI JSON API response the bot reads.
//
// The same shape is returned for /pypi/<name>/json and
// /pypi/<name>/<version>/json. URLs lists the files of the resolved version;
// Releases may be empty for the versioned endpoint.
type Document struct {
	Info     Info              `json:"info"`
	URLs     []File            `json:"urls"`
	Releases map[string][]File `json:"releases"`
}

// Info is the "info" object of a PyPI document.
type Info struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	Author          string `json:"author"`
	AuthorEmail     string `json:"author_email"`
	Maintainer      string `json:"maintainer"`
	MaintainerEmail string `json:"maintainer_email"`
	Summary         string `json:"summary"`
	HomePage        string `json:"home_page"`
	PackageURL      string `json:"package_url"`
	ProjectURL      string `json:"project_url"`
	ReleaseURL      string `json:"release_url"`
	Yanked          bool   `json:"yanked"`
}

// File is one distribution file (wheel or sdist) of a release.
type File struct {
	Filename    string `json:"filename"`
	PackageType string `json:"packagetype"`
	UploadTime  string `json:"upload_time"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	Yanked      bool   `json:"yanked"`
}

// Files returns the distribution files of the resolved version: the
// top-level "urls" list when present, otherwise the matching "releases" entry.
func (d *Document) Files() []File {
	if len(d.URLs) > 0 {
		return d.URLs
	}
	return d.Releases[d.Info.Version]
}

// Client fetches package documents from the PyPI JSON API.
//
// A Client holds no per-request state and is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client on top of a shared HTTP client.
// An empty baseURL selects [DefaultBaseURL].
func NewClient(hc *integrations.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  hc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchMetadata retrieves the document for pkg, or for one release of pkg
// when version is non-empty. Exactly one request is made.
//
// Failures are [perrors.Error] values coded as:
//   - NOT_FOUND for a 404, with a message naming the package and version
//   - NETWORK_ERROR for timeouts and connection failures
//   - HTTP_ERROR for any other non-2xx status
//   - DECODE_ERROR when the body is not JSON
func (c *Client) FetchMetadata(ctx context.Context, pkg, version string) (*Document, error) {
	if strings.TrimSpace(pkg) == "" {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "package name cannot be empty")
	}

	var doc Document
	if err := c.Get(ctx, c.metadataURL(pkg, version), &doc); err != nil {
		return nil, classify(err, pkg, version)
	}
	return &doc, nil
}

func (c *Client) metadataURL(pkg, version string) string {
	if version == "" {
		return fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(pkg))
	}
	return fmt.Sprintf("%s/%s/%s/json", c.baseURL, url.PathEscape(pkg), url.PathEscape(version))
}

// NotFoundMessage is the user-facing text for a package or release PyPI
// does not know about.
func NotFoundMessage(pkg, version string) string {
	if version == "" {
		version = "(any)"
	}
	return fmt.Sprintf("PyPI couldn't find %s version %s. Are you sure it exists?", pkg, version)
}

func classify(err error, pkg, version string) error {
	var httpErr *integrations.HTTPError
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return perrors.Wrap(perrors.ErrCodeNotFound, err, "%s", NotFoundMessage(pkg, version))
	case errors.Is(err, integrations.ErrNetwork):
		return perrors.Wrap(perrors.ErrCodeNetwork, err, "fetching %s", pkg)
	case errors.Is(err, integrations.ErrDecode):
		return perrors.Wrap(perrors.ErrCodeDecode, err, "decoding %s", pkg)
	case errors.As(err, &httpErr):
		return perrors.Wrap(perrors.ErrCodeHTTP, err, "fetching %s: status %d", pkg, httpErr.StatusCode)
	default:
		return perrors.Wrap(perrors.ErrCodeInternal, err, "fetching %s", pkg)
	}
}
