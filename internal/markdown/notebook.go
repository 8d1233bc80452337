package markdown

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// multiline decodes notebook text fields, which may be a string or a list
// of line strings.
type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*m = multiline(strings.Join(lines, ""))
	return nil
}

type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type notebookCell struct {
	CellType string           `json:"cell_type"`
	Source   multiline        `json:"source"`
	Outputs  []notebookOutput `json:"outputs"`
}

type notebookOutput struct {
	OutputType string                     `json:"output_type"`
	Text       multiline                  `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
	EName      string                     `json:"ename"`
	EValue     string                     `json:"evalue"`
	Traceback  []string                   `json:"traceback"`
}

var (
	outOnlyDirective = regexp.MustCompile(`^\s*(#|//|--|%)*\s*out_only\s*$`)
	ansiEscape       = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
)

// FlattenNotebook converts .ipynb JSON into Markdown text: markdown cells
// verbatim, code cells as fenced source blocks tagged with the kernel
// language, and captured output as fenced "output" blocks. A code cell whose
// first line is an out_only directive contributes its output only.
func FlattenNotebook(data []byte) (string, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", fmt.Errorf("decode notebook: %w", err)
	}

	lang := nb.Metadata.LanguageInfo.Name
	if lang == "" {
		lang = nb.Metadata.KernelSpec.Language
	}

	parts := make([]string, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		switch c.CellType {
		case "markdown", "raw":
			if text := strings.TrimRight(string(c.Source), "\n"); text != "" {
				parts = append(parts, text)
			}
		case "code":
			block, err := flattenCodeCell(c, lang)
			if err != nil {
				return "", err
			}
			if block != "" {
				parts = append(parts, block)
			}
		}
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func flattenCodeCell(c notebookCell, lang string) (string, error) {
	source := string(c.Source)
	echo := true
	if first, rest, _ := strings.Cut(source, "\n"); outOnlyDirective.MatchString(first) {
		echo = false
		source = rest
	}

	var blocks []string
	if src := strings.TrimRight(source, "\n"); echo && strings.TrimSpace(src) != "" {
		blocks = append(blocks, fence(lang, src))
	}
	for _, out := range c.Outputs {
		text, err := outputText(out)
		if err != nil {
			return "", err
		}
		if text = strings.TrimRight(text, "\n"); text != "" {
			blocks = append(blocks, fence("output", text))
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

func outputText(out notebookOutput) (string, error) {
	switch out.OutputType {
	case "stream":
		return string(out.Text), nil
	case "execute_result", "display_data":
		raw, ok := out.Data["text/plain"]
		if !ok {
			return "", nil
		}
		var text multiline
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("decode text/plain output: %w", err)
		}
		return string(text), nil
	case "error":
		if len(out.Traceback) > 0 {
			return ansiEscape.ReplaceAllString(strings.Join(out.Traceback, "\n"), ""), nil
		}
		return out.EName + ": " + out.EValue, nil
	default:
		return "", nil
	}
}

// fence wraps body in a fenced code block long enough not to collide with
// backtick runs inside body.
func fence(info, body string) string {
	ticks := "```"
	for strings.Contains(body, ticks) {
		ticks += "`"
	}
	return ticks + info + "\n" + body + "\n" + ticks
}
