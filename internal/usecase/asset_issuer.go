package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
)

// AssetIssuer mints short-lived URLs for protected files.
type AssetIssuer struct {
	signer adapter.AssetSigner
	bucket string
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewAssetIssuer(signer adapter.AssetSigner, defaultBucket string, ttl time.Duration, logger *zerolog.Logger) *AssetIssuer {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &AssetIssuer{signer: signer, bucket: defaultBucket, ttl: ttl, log: logger}
}

var errUnsignableRef = errors.New("asset reference does not name an object")

// storagePrefixes are the path markers of storage object URLs.
var storagePrefixes = []string{
	"/storage/v1/object/public/",
	"/storage/v1/object/sign/",
	"/storage/v1/object/authenticated/",
	"/storage/v1/object/",
}

// objectLocation derives bucket and key from a stored reference. It accepts a
// full storage URL, "<bucket>/<key>", or a bare key in the default bucket.
func (i *AssetIssuer) objectLocation(ref string) (bucket, key string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", errUnsignableRef
	}
	path := ref
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, perr := url.Parse(ref)
		if perr != nil {
			return "", "", perr
		}
		path = ""
		for _, p := range storagePrefixes {
			if idx := strings.Index(u.Path, p); idx >= 0 {
				path = u.Path[idx+len(p):]
				break
			}
		}
		if path == "" {
			return "", "", errUnsignableRef
		}
		if unescaped, uerr := url.PathUnescape(path); uerr == nil {
			path = unescaped
		}
		bucket, key, _ = strings.Cut(path, "/")
		if bucket == "" || key == "" {
			return "", "", errUnsignableRef
		}
		return bucket, key, nil
	}

	path = strings.TrimPrefix(path, "/")
	if i.bucket != "" {
		return i.bucket, strings.TrimPrefix(path, i.bucket+"/"), nil
	}
	bucket, key, _ = strings.Cut(path, "/")
	if bucket == "" || key == "" {
		return "", "", errUnsignableRef
	}
	return bucket, key, nil
}

// Issue returns a presigned GET URL and signed=true, or the stored reference
// and signed=false when signing is impossible.
func (i *AssetIssuer) Issue(ctx context.Context, storedRef string) (string, bool) {
	bucket, key, err := i.objectLocation(storedRef)
	if err == nil {
		var signed string
		signed, err = i.signer.PresignGet(ctx, bucket, key, i.ttl)
		if err == nil {
			return signed, true
		}
	}
	metrics.IncAssetSignFallback()
	logging.With(ctx, i.log).Warn().Err(err).Msg("asset signing failed, serving stored reference")
	return storedRef, false
}
