package pypiinfo

import (
	"time"

	"github.com/matzehuels/pypilink/pkg/errors"
	"github.com/matzehuels/pypilink/pkg/integrations/pypi"
)

// UploadTimeLayout is the format of PyPI's upload_time field. The values
// carry no offset and are UTC.
const UploadTimeLayout = "2006-01-02T15:04:05"

// ResolveReleaseDate returns the latest upload time across files.
//
// Upload times are fixed-width ISO-8601 strings, so the lexicographic
// maximum is also the chronological one. A fractional seconds suffix is
// accepted. An empty file list, or a maximum that does not parse, is a
// MALFORMED_DATA error.
func ResolveReleaseDate(files []pypi.File) (time.Time, error) {
	var latest string
	for _, f := range files {
		if f.UploadTime > latest {
			latest = f.UploadTime
		}
	}
	if latest == "" {
		return time.Time{}, errors.New(errors.ErrCodeMalformedData, "release has no uploaded files")
	}

	t, err := time.ParseInLocation(UploadTimeLayout, latest, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeMalformedData, err, "bad upload time %q", latest)
	}
	return t, nil
}
