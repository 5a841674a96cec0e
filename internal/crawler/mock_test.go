package crawler

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// fakeFetcher serves canned HTML per URL and records fetch order.
type fakeFetcher struct {
	pages    map[string]string
	errs     map[string]error
	requests []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (io.Reader, error) {
	f.requests = append(f.requests, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return strings.NewReader(html), nil
}

func (f *fakeFetcher) Close() {}

// fakeNotifier records deliveries.
type fakeNotifier struct {
	texts    []string
	photos   [][]byte
	captions []string
	err      error
}

func (n *fakeNotifier) SendText(text string) error {
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

func (n *fakeNotifier) SendPhoto(img []byte, caption string) error {
	if n.err != nil {
		return n.err
	}
	n.photos = append(n.photos, img)
	n.captions = append(n.captions, caption)
	return nil
}

func (n *fakeNotifier) Close() error { return nil }

// fakeDownloader returns a uniform thumbnail per requested URL without
// touching the network.
type fakeDownloader struct {
	thumbW, thumbH int
}

func (d *fakeDownloader) Download(urls []string, max int) []image.Image {
	if len(urls) > max {
		urls = urls[:max]
	}
	images := make([]image.Image, 0, len(urls))
	for range urls {
		images = append(images, imaging.New(d.thumbW, d.thumbH, color.NRGBA{200, 200, 200, 255}))
	}
	return images
}
