// Package testutil provides multipart uploads, image payloads and an in-memory
// student store for tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime"
	"mime/multipart"
	"net/textproto"
	"testing"
)

// Upload describes one file part of a multipart form
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// PNG returns the bytes of a small valid PNG image
func PNG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, sampleImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEG returns the bytes of a small valid JPEG image
func JPEG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sampleImage(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

// MultipartBody encodes fields and an optional upload, returning the body and its content type
func MultipartBody(t testing.TB, fields map[string]string, upload *Upload) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}

	if upload != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, upload.Field, upload.Filename))
		h.Set("Content-Type", upload.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(upload.Content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// FileHeader parses an upload back into the *multipart.FileHeader a handler would see
func FileHeader(t testing.TB, upload Upload) *multipart.FileHeader {
	t.Helper()
	body, contentType := MultipartBody(t, nil, &upload)

	_, params, err := parseBoundary(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	form, err := multipart.NewReader(body, params).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File[upload.Field]
	if len(files) != 1 {
		t.Fatalf("expected one file under %q, got %d", upload.Field, len(files))
	}
	return files[0]
}

func parseBoundary(contentType string) (string, string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", "", err
	}
	boundary, ok := params["boundary"]
	if !ok {
		return "", "", fmt.Errorf("no boundary in %q", contentType)
	}
	return mediaType, boundary, nil
}
