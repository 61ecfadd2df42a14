package content

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

type SlugStrategy string

const (
	// SlugFilename keys an entry by its basename. Same-named files in
	// different directories collide.
	SlugFilename SlugStrategy = "filename"
	// SlugPath keys an entry by its path relative to the kind root.
	SlugPath SlugStrategy = "path"
)

func ParseSlugStrategy(value string) (SlugStrategy, error) {
	switch SlugStrategy(value) {
	case SlugFilename, SlugPath:
		return SlugStrategy(value), nil
	case "":
		return SlugFilename, nil
	default:
		return "", fmt.Errorf("unknown slug strategy %q", value)
	}
}

// SlugFor derives the slug of the file at name (slash-separated, relative to
// the kind root) once its extension is removed.
func SlugFor(strategy SlugStrategy, name string, extensions []string) string {
	stem := trimExtension(name, extensions)
	if strategy == SlugPath {
		segments := strings.Split(stem, "/")
		for i, segment := range segments {
			segments[i] = url.PathEscape(segment)
		}
		return strings.Join(segments, "/")
	}
	return url.PathEscape(path.Base(stem))
}

// CanonicalSlug accepts a slug in escaped or unescaped form and returns its
// escaped form together with the decoded relative path it names.
func CanonicalSlug(slug string) (string, string, error) {
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return "", "", fmt.Errorf("%w: empty", ErrInvalidSlug)
	}

	parts := strings.Split(slug, "/")
	escaped := make([]string, len(parts))
	decoded := make([]string, len(parts))
	for i, part := range parts {
		value, err := url.PathUnescape(part)
		if err != nil {
			value = part
		}
		switch {
		case value == "", value == ".", value == "..":
			return "", "", fmt.Errorf("%w: segment %q", ErrInvalidSlug, part)
		case value == hiddenDir:
			return "", "", fmt.Errorf("%w: hidden segment", ErrInvalidSlug)
		case strings.ContainsAny(value, "/\\\x00"):
			return "", "", fmt.Errorf("%w: segment %q", ErrInvalidSlug, part)
		}
		decoded[i] = value
		escaped[i] = url.PathEscape(value)
	}
	return strings.Join(escaped, "/"), strings.Join(decoded, "/"), nil
}

func trimExtension(name string, extensions []string) string {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return true
		}
	}
	return false
}
