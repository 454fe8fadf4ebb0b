package rules

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// lookup walks decoded JSON by object keys (string) and array indexes (int).
func lookup(v any, path ...any) (any, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = obj[key]; !ok {
				return nil, false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

func lookupString(v any, path ...any) (string, bool) {
	raw, ok := lookup(v, path...)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ExtractInstagram reads the oEmbed "url" field.
func ExtractInstagram(data any) (string, bool) {
	return lookupString(data, "url")
}

var picplzSizes = []string{"640r", "320rh", "100sh"}

// ExtractPicplz picks the largest available rendition of the first picture.
func ExtractPicplz(data any) (string, bool) {
	files, ok := lookup(data, "value", "pics", 0, "pic_files")
	if !ok {
		return "", false
	}
	for _, size := range picplzSizes {
		if u, ok := lookupString(files, size, "img_url"); ok {
			return u, true
		}
	}
	return "", false
}

// ExtractFlickr prefers the last "Medium" size and falls back to the last size listed.
func ExtractFlickr(data any) (string, bool) {
	raw, ok := lookup(data, "sizes", "size")
	if !ok {
		return "", false
	}
	sizes, ok := raw.([]any)
	if !ok || len(sizes) == 0 {
		return "", false
	}
	var result string
	for _, size := range sizes {
		if label, _ := lookupString(size, "label"); label == "Medium" {
			if src, ok := lookupString(size, "source"); ok {
				result = src
			}
		}
	}
	if result == "" {
		result, _ = lookupString(sizes[len(sizes)-1], "source")
	}
	return result, result != ""
}

// SelectAttr returns a DOMExtractor reading attr from the first element matching selector.
func SelectAttr(selector, attr string) DOMExtractor {
	return func(doc *goquery.Document) (string, bool) {
		if doc == nil {
			return "", false
		}
		val, ok := doc.Find(selector).First().Attr(attr)
		if !ok {
			return "", false
		}
		val = strings.TrimSpace(val)
		return val, val != ""
	}
}
