package config

import (
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/jiek/pkg/errors"
)

// GenerateConfigContent returns a jiek.toml template: the embedded defaults
// with every value commented out
func GenerateConfigContent() string {
	return commentOutConfigValues(GetDefaultsContent())
}

// renderedWatch is Watch with the debounce kept in its readable form;
// go-toml encodes time.Duration as an integer
type renderedWatch struct {
	Debounce string   `toml:"debounce"`
	Ignore   []string `toml:"ignore"`
}

type renderedConfig struct {
	Build     Build         `toml:"build"`
	Entries   Entries       `toml:"entries"`
	Pkger     Pkger         `toml:"pkger"`
	Workspace Workspace     `toml:"workspace"`
	Watch     renderedWatch `toml:"watch"`
}

// Render encodes the effective configuration as TOML
func Render(cfg *Config) (string, error) {
	data, err := toml.Marshal(renderedConfig{
		Build:     cfg.Build,
		Entries:   cfg.Entries,
		Pkger:     cfg.Pkger,
		Workspace: cfg.Workspace,
		Watch:     renderedWatch{Debounce: cfg.Watch.Debounce.String(), Ignore: cfg.Watch.Ignore},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(data), nil
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines as-is
		if trimmed == "" {
			result = append(result, line)
			continue
		}

		// Keep lines that are already comments
		if strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		// Keep section headers (e.g., [build], [entries]) as-is
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		// Comment out configuration value lines
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
