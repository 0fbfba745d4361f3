package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

type frontmatter struct {
	Title    string `yaml:"title"`
	Kind     string `yaml:"kind,omitempty"`
	Revision int    `yaml:"revision"`
	Updated  string `yaml:"updated,omitempty"`
}

// splitFrontmatter separates a leading YAML block fenced by "---" lines from
// the body. ok is false when content has no complete frontmatter block.
func splitFrontmatter(content string) (header string, body string, ok bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || lines[0] != frontmatterFence {
		return "", content, false
	}

	for i := 1; i < len(lines); i++ {
		if lines[i] == frontmatterFence {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", content, false
}

func decodeFrontmatter(content string) (frontmatter, string, error) {
	header, body, ok := splitFrontmatter(content)
	if !ok {
		return frontmatter{}, body, nil
	}

	var meta frontmatter
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return frontmatter{}, "", fmt.Errorf("decode frontmatter: %w", err)
	}
	return meta, body, nil
}

func encodeFrontmatter(meta frontmatter, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterFence + "\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(meta); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	buf.WriteString(frontmatterFence + "\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// titleFromBody returns the text of the first "# " heading.
func titleFromBody(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

func parseUpdated(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func formatUpdated(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}
