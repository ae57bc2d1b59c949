// Package exifmeta decodes image streams into the tag-group shape the
// extraction pipeline consumes, backed by goexif plus the stdlib decoders.
package exifmeta

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/bryanwahyu/forensight/internal/domain/media"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Reader struct{}

func New() Reader { return Reader{} }

// ifd0Fields live in the camera directory; everything else goes to SubIFD.
var ifd0Fields = map[exif.FieldName]bool{
	exif.Make:        true,
	exif.Model:       true,
	exif.DateTime:    true,
	exif.Orientation: true,
	exif.Software:    true,
	exif.ImageWidth:  true,
	exif.ImageLength: true,
}

// Read buffers the stream once and produces tag groups plus the raw text
// dump those groups were rendered from. A file without EXIF still yields
// the File Type group; only an undecodable stream is an error.
func (Reader) Read(r io.Reader) ([]media.TagGroup, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("buffering image: %w", err)
	}

	cfg, formatName, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image config: %w", err)
	}

	fileType := media.TagGroup{Name: "File Type", Tags: []media.Tag{
		{Name: "Detected File Type Name", Value: canonicalFormatName(formatName)},
		{Name: "Detected MIME Type", Value: mimeForFormat(formatName)},
		{Name: "Image Width", Value: strconv.Itoa(cfg.Width) + " pixels"},
		{Name: "Image Height", Value: strconv.Itoa(cfg.Height) + " pixels"},
	}}
	groups := []media.TagGroup{fileType}

	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		groups = append(groups, exifGroups(x)...)
	}

	return groups, renderGroups(groups), nil
}

func exifGroups(x *exif.Exif) []media.TagGroup {
	w := &walker{}
	_ = x.Walk(w)

	var out []media.TagGroup
	if len(w.ifd0.Tags) > 0 {
		w.ifd0.Name = "Exif IFD0"
		out = append(out, w.ifd0)
	}
	if len(w.subIfd.Tags) > 0 {
		w.subIfd.Name = "Exif SubIFD"
		out = append(out, w.subIfd)
	}

	if lat, long, err := x.LatLong(); err == nil {
		out = append(out, media.TagGroup{Name: "GPS", Tags: []media.Tag{
			{Name: "GPS Latitude", Value: strconv.FormatFloat(lat, 'f', 6, 64)},
			{Name: "GPS Longitude", Value: strconv.FormatFloat(long, 'f', 6, 64)},
		}})
	}
	return out
}

type walker struct {
	ifd0   media.TagGroup
	subIfd media.TagGroup
}

func (w *walker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	value := tagValue(tag)
	if value == "" {
		return nil
	}
	// GPS punya grup sendiri lewat LatLong, mentahnya tidak perlu dobel
	if strings.HasPrefix(string(name), "GPS") {
		return nil
	}
	t := media.Tag{Name: string(name), Value: value}
	if ifd0Fields[name] {
		w.ifd0.Tags = append(w.ifd0.Tags, t)
	} else {
		w.subIfd.Tags = append(w.subIfd.Tags, t)
	}
	return nil
}

// tagValue unwraps goexif's quoted string rendering.
func tagValue(tag *tiff.Tag) string {
	if tag == nil {
		return ""
	}
	if s, err := tag.StringVal(); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.Trim(strings.TrimSpace(tag.String()), `"`)
}

// renderGroups writes the dump in the two-level layout the tree parser
// understands: group line ending with ':', leaves indented two spaces.
func renderGroups(groups []media.TagGroup) string {
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(g.Name)
		b.WriteString(":\n")
		for _, t := range g.Tags {
			b.WriteString("  ")
			b.WriteString(t.Name)
			b.WriteString(": ")
			b.WriteString(t.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func canonicalFormatName(formatName string) string {
	switch strings.ToLower(formatName) {
	case "jpeg":
		return "JPEG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	case "bmp":
		return "BMP"
	case "tiff":
		return "TIFF"
	case "webp":
		return "WEBP"
	default:
		return strings.ToUpper(formatName)
	}
}

func mimeForFormat(formatName string) string {
	switch strings.ToLower(formatName) {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "image/unknown"
	}
}
