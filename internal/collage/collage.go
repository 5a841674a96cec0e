// Package collage downloads listing photos and assembles the grid preview
// attached to notifications.
package collage

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"anbondar/rentworker/helpers"
	"anbondar/rentworker/logger"
)

// Thumbnail bound applied before placement.
const (
	ThumbWidth  = 300
	ThumbHeight = 400
)

// Grid geometry of the composite preview.
const (
	Cols   = 3
	Margin = 5
)

// Downloader fetches listing photos and resizes them to the thumbnail bound.
type Downloader struct {
	log *logger.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(log *logger.Logger) *Downloader {
	return &Downloader{log: log}
}

// Download fetches at most max images. Individual failures are logged and
// skipped; the returned slice holds whatever decoded successfully, in input
// order.
func (d *Downloader) Download(urls []string, max int) []image.Image {
	if len(urls) > max {
		urls = urls[:max]
	}

	images := make([]image.Image, 0, len(urls))
	for _, url := range urls {
		data, err := helpers.FetchImage(url)
		if err != nil {
			d.log.Warn().Str("url", url).Err(err).Msg("Image download failed")
			continue
		}

		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			d.log.Warn().Str("url", url).Err(err).Msg("Image decode failed")
			continue
		}

		images = append(images, imaging.Fit(img, ThumbWidth, ThumbHeight, imaging.Lanczos))
	}

	d.log.Debug().Int("requested", len(urls)).Int("downloaded", len(images)).Msg("Downloaded listing images")
	return images
}

// Compose assembles thumbnails into a cols-wide grid separated by margin
// pixels on a black background. The first thumbnail's dimensions set the cell
// size. Returns nil when images is empty.
func Compose(images []image.Image, cols, margin int) image.Image {
	if len(images) == 0 {
		return nil
	}

	bounds := images[0].Bounds()
	thumbW, thumbH := bounds.Dx(), bounds.Dy()
	rows := (len(images) + cols - 1) / cols

	width := cols*thumbW + (cols+1)*margin
	height := rows*thumbH + (rows+1)*margin
	canvas := imaging.New(width, height, color.NRGBA{0, 0, 0, 255})

	for idx, img := range images {
		x := margin + (idx%cols)*(thumbW+margin)
		y := margin + (idx/cols)*(thumbH+margin)
		canvas = imaging.Paste(canvas, img, image.Pt(x, y))
	}

	return canvas
}

// EncodeJPEG renders the composite for upload.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
