package pdf

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

const (
	// Pages are rasterized at screen resolution and then scaled down.
	// The reduced scale and JPEG quality trade visual fidelity for a
	// smaller request payload and lower model latency.
	renderDPI   = 96
	renderScale = 0.75
	jpegQuality = 80
)

// ImagePart is one rendered page: the encoded image bytes paired with the
// 1-based page number they came from.
type ImagePart struct {
	Page int
	MIME string
	Data []byte
}

// Document wraps a loaded PDF. Page numbers at this API are 1-based.
type Document struct {
	doc       *fitz.Document
	fileName  string
	pageCount int
}

// Open parses raw PDF bytes into a Document. Corrupt input fails here, not
// at render time.
func Open(fileName string, data []byte) (*Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	return &Document{
		doc:       doc,
		fileName:  fileName,
		pageCount: doc.NumPage(),
	}, nil
}

// FileName returns the name the document was opened under.
func (d *Document) FileName() string {
	return d.fileName
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// RenderPage rasterizes one page to a scaled-down JPEG.
func (d *Document) RenderPage(page int) (ImagePart, error) {
	if page < 1 || page > d.pageCount {
		return ImagePart{}, fmt.Errorf("page %d out of range [1, %d]", page, d.pageCount)
	}

	img, err := d.doc.ImageDPI(page-1, renderDPI)
	if err != nil {
		return ImagePart{}, fmt.Errorf("failed to rasterize page %d: %w", page, err)
	}

	width := int(float64(img.Bounds().Dx()) * renderScale)
	scaled := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return ImagePart{}, fmt.Errorf("failed to encode page %d: %w", page, err)
	}

	return ImagePart{Page: page, MIME: "image/jpeg", Data: buf.Bytes()}, nil
}

// Close releases the underlying document resources.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}
