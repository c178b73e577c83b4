package batch

import (
	"image"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/visualdiff/go/comparison"
	"go.skia.org/webshot/visualdiff/go/imgio"
)

// imageCache keeps the most recently used decoded images, so that a baseline
// shared by many jobs is only read once. It is safe for concurrent use.
type imageCache struct {
	cache *lru.Cache
}

func newImageCache(size int) (*imageCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, skerr.Wrapf(err, "creating image cache of size %d", size)
	}
	return &imageCache{cache: c}, nil
}

// load returns the decoded image at path. Two goroutines that miss at the
// same time may both decode the file.
func (c *imageCache) load(path string) (image.Image, error) {
	key := filepath.Clean(path)
	if img, ok := c.cache.Get(key); ok {
		sklog.Debugf("Image cache hit for %s", key)
		return img.(image.Image), nil
	}
	img, err := imgio.Load(path)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	c.cache.Add(key, img)
	return img, nil
}

// compareFiles behaves like comparison.CompareFiles, but loads through the cache.
func (c *imageCache) compareFiles(baselinePath, actualPath string, opts comparison.Options) (comparison.Result, error) {
	if err := opts.Validate(); err != nil {
		return comparison.Result{}, skerr.Wrap(err)
	}
	img1, err := c.load(baselinePath)
	if err != nil {
		return comparison.Result{}, skerr.Wrap(&comparison.LoadError{Which: comparison.FirstImage, Path: baselinePath, Err: err})
	}
	img2, err := c.load(actualPath)
	if err != nil {
		return comparison.Result{}, skerr.Wrap(&comparison.LoadError{Which: comparison.SecondImage, Path: actualPath, Err: err})
	}
	return comparison.Compare(img1, img2, opts)
}
