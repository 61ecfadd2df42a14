package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Frontmatter map[string]any
	Tags        []string
	Body        string
	SourceFile  string
}

var (
	ErrUnterminated = errors.New("frontmatter opened but never closed")
	ErrInvalidYAML  = errors.New("invalid YAML in frontmatter")
	ErrInvalidTags  = errors.New("tags must be string or list of strings")
	ErrInvalidJSON  = errors.New("invalid JSON document")
)

const marker = "---"

// ParseFS reads name from fsys. SourceFile is set to name, relative to the FS root.
func ParseFS(fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = name
	return doc, nil
}

// Parse splits content into YAML frontmatter and markdown body. A document
// without an opening marker is all body with empty frontmatter.
func Parse(content []byte) (*Document, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(normalized, "\ufeff\n\t ")

	if !bytes.HasPrefix(trimmed, []byte(marker+"\n")) {
		return &Document{
			Frontmatter: map[string]any{},
			Body:        string(trimmed),
		}, nil
	}

	rest := trimmed[len(marker)+1:]
	yamlBytes, body, ok := splitClosing(rest)
	if !ok {
		return nil, ErrUnterminated
	}

	frontmatter := map[string]any{}
	if len(bytes.TrimSpace(yamlBytes)) > 0 {
		if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
		if frontmatter == nil {
			frontmatter = map[string]any{}
		}
	}

	tags, err := parseTags(frontmatter["tags"])
	if err != nil {
		return nil, err
	}

	return &Document{
		Frontmatter: frontmatter,
		Tags:        tags,
		Body:        body,
	}, nil
}

// ParseJSON treats a JSON object as frontmatter. A string "content" or
// "body" member becomes the document body.
func ParseJSON(content []byte) (*Document, error) {
	frontmatter := map[string]any{}
	if err := json.Unmarshal(bytes.TrimLeft(content, "\ufeff"), &frontmatter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}

	tags, err := parseTags(frontmatter["tags"])
	if err != nil {
		return nil, err
	}

	var body string
	for _, key := range []string{"content", "body"} {
		if s, ok := frontmatter[key].(string); ok {
			body = s
			break
		}
	}

	return &Document{
		Frontmatter: frontmatter,
		Tags:        tags,
		Body:        body,
	}, nil
}

// splitClosing finds the closing marker, which must sit on its own line.
func splitClosing(rest []byte) ([]byte, string, bool) {
	if bytes.HasPrefix(rest, []byte(marker+"\n")) {
		return nil, string(rest[len(marker)+1:]), true
	}
	if bytes.Equal(rest, []byte(marker)) {
		return nil, "", true
	}

	offset := 0
	for {
		idx := bytes.Index(rest[offset:], []byte("\n"+marker))
		if idx == -1 {
			return nil, "", false
		}
		start := offset + idx
		after := start + 1 + len(marker)
		if after == len(rest) {
			return rest[:start+1], "", true
		}
		if rest[after] == '\n' {
			return rest[:start+1], string(rest[after+1:]), true
		}
		offset = after
	}
}

func parseTags(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		if strings.Contains(v, ",") {
			return splitTagList(v), nil
		}
		return []string{strings.TrimSpace(v)}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, ErrInvalidTags
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			tags = append(tags, strings.TrimSpace(s))
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, ErrInvalidTags
	}
}

func splitTagList(value string) []string {
	var tags []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
