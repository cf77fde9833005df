package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-strada/strada/pkg/cache"
)

// assetHandler serves files from fsys using the tail captured by the
// assets route's ** segment. Strong ETags (sha256 of contents) are
// memoized per path+mtime+size so conditional requests answer 304 without
// re-reading the file.
func assetHandler(app *App, fsys fs.FS) HandlerFunc {
	return func(c Context) error {
		name := path.Clean(c.Param("*"))
		if name == "" || name == "." || !fs.ValidPath(name) {
			return ErrNotFound("file not found")
		}

		f, err := fsys.Open(name)
		if err != nil {
			return ErrNotFound("file not found")
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			return ErrNotFound("file not found")
		}

		etag, err := assetETag(c, app, fsys, name, info)
		if err != nil {
			return fmt.Errorf("asset etag %s: %w", name, err)
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.SetHeader("Content-Type", contentType)
		c.SetHeader("ETag", etag)
		c.SetHeader("X-Content-Type-Options", "nosniff")
		c.SetHeader("Cache-Control", fmt.Sprintf("public, max-age=%d", int(app.assetMaxAge.Seconds())))

		if etagMatches(c.Header("If-None-Match"), etag) {
			return c.NoContent(http.StatusNotModified)
		}

		c.SetHeader("Content-Length", strconv.FormatInt(info.Size(), 10))
		c.Response().WriteHeader(http.StatusOK)
		_, err = io.Copy(c.Response(), f)
		return err
	}
}

// assetETag computes the strong ETag for a file, memoized in the app's
// asset cache. The key includes mtime and size so a changed file gets a
// fresh digest; entries never expire and rely on LRU eviction.
func assetETag(ctx context.Context, app *App, fsys fs.FS, name string, info fs.FileInfo) (string, error) {
	key := fmt.Sprintf("%s|%d|%d", name, info.ModTime().UnixNano(), info.Size())
	return cache.GetOrSet(ctx, app.assetCache, key, func(ctx context.Context) (string, time.Duration, error) {
		f, err := fsys.Open(name)
		if err != nil {
			return "", 0, err
		}
		defer f.Close()

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return "", 0, err
		}
		return strconv.Quote(hex.EncodeToString(h.Sum(nil))), -1, nil
	})
}

// etagMatches reports whether an If-None-Match header matches the given
// ETag. Weak prefixes are ignored for the comparison.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
