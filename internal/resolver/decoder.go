package resolver

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"image"
	"strconv"
	"strings"

	// Raster formats for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errUnrecognizedImage = errors.New("unrecognized image format")

// DecodeDimensions reads the pixel dimensions of an image payload. Raster
// dimensions win; vector formats fall back to their logical point size. A
// recognized format with no usable size returns (0, 0, nil); the slot stays
// unresolved without counting as a fetch failure. Unrecognized bytes return
// an error and the caller treats the slot as failed.
func DecodeDimensions(data []byte, contentType string) (width, height int, err error) {
	if len(data) == 0 {
		return 0, 0, errUnrecognizedImage
	}

	if cfg, _, decodeErr := image.DecodeConfig(bytes.NewReader(data)); decodeErr == nil {
		if cfg.Width > 0 && cfg.Height > 0 {
			return cfg.Width, cfg.Height, nil
		}
		// Raster decoder recognized the format but reported no size; fall
		// through to the vector paths before giving up.
	}

	if isSVG(data, contentType) {
		w, h := svgDimensions(data)
		return w, h, nil
	}

	if isICO(data) {
		w, h := icoDimensions(data)
		if w > 0 && h > 0 {
			return w, h, nil
		}
		return 0, 0, nil
	}

	return 0, 0, errUnrecognizedImage
}

func isSVG(data []byte, contentType string) bool {
	if strings.Contains(contentType, "image/svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}

// svgDimensions returns the logical point size of an SVG: explicit
// width/height attributes first, the viewBox extent otherwise. Percentage
// sizes carry no intrinsic dimension and are skipped.
func svgDimensions(data []byte) (int, int) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	for {
		token, err := decoder.Token()
		if err != nil {
			return 0, 0
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "svg" {
			continue
		}

		var widthAttr, heightAttr, viewBox string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				widthAttr = attr.Value
			case "height":
				heightAttr = attr.Value
			case "viewBox":
				viewBox = attr.Value
			}
		}

		w := parseSVGLength(widthAttr)
		h := parseSVGLength(heightAttr)
		if w > 0 && h > 0 {
			return w, h
		}

		fields := strings.Fields(strings.ReplaceAll(viewBox, ",", " "))
		if len(fields) == 4 {
			vw, errW := strconv.ParseFloat(fields[2], 64)
			vh, errH := strconv.ParseFloat(fields[3], 64)
			if errW == nil && errH == nil && vw > 0 && vh > 0 {
				return int(vw), int(vh)
			}
		}
		return 0, 0
	}
}

// parseSVGLength parses a length like "24", "24px" or "24pt" into a point
// size. Percentages and unparsable values yield 0.
func parseSVGLength(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.HasSuffix(trimmed, "%") {
		return 0
	}
	trimmed = strings.TrimRight(trimmed, "abcdefghijklmnopqrstuvwxyz")
	f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil || f <= 0 {
		return 0
	}
	return int(f)
}

// isICO checks the 6-byte ICONDIR header (reserved=0, type=1).
func isICO(data []byte) bool {
	return len(data) >= 6 &&
		binary.LittleEndian.Uint16(data[0:2]) == 0 &&
		binary.LittleEndian.Uint16(data[2:4]) == 1
}

// icoDimensions picks the largest directory entry of an ICO container.
// Entry width/height bytes of zero mean 256.
func icoDimensions(data []byte) (int, int) {
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	bestW, bestH := 0, 0
	for i := 0; i < count; i++ {
		offset := 6 + i*16
		if offset+16 > len(data) {
			break
		}
		w := int(data[offset])
		h := int(data[offset+1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		if w*h > bestW*bestH {
			bestW, bestH = w, h
		}
	}
	return bestW, bestH
}
