package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSiteError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SiteError
		expected string
	}{
		{
			name:     "error without location",
			err:      New(CategoryConfig, KindConfigError, "configuration invalid"),
			expected: "ConfigError (config): configuration invalid",
		},
		{
			name:     "error with file and command",
			err:      UnresolvedTag("prop").InFile("index.html"),
			expected: "UnresolvedTag (template): tag left unresolved after all passes [file=index.html command=prop]",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, KindConfigError, "failed to load config"),
			expected: "ConfigError (config): failed to load config: file not found",
		},
		{
			name:     "error with context",
			err:      UndefinedGlobal("site_name"),
			expected: `UndefinedGlobal (scope): global "site_name" is not defined in site config name=site_name`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestSiteError_InFileKeepsInnermost(t *testing.T) {
	err := UndefinedVariable("x").InFile("inner.html").InFile("outer.html")
	if err.File != "inner.html" {
		t.Errorf("File = %q, want inner.html", err.File)
	}
}

func TestIsKind(t *testing.T) {
	missing := MissingPropValue("title")
	wrapped := fmt.Errorf("pass template: %w", missing)

	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{"direct match", missing, KindMissingPropValue, true},
		{"wrapped match", wrapped, KindMissingPropValue, true},
		{"different kind", missing, KindPropNotDeclared, false},
		{"standard error", stdErrors.New("boom"), KindMissingPropValue, false},
		{"nil", nil, KindMissingPropValue, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsKind(test.err, test.kind); got != test.expected {
				t.Errorf("IsKind() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestPropErrorsShareCategory(t *testing.T) {
	if GetCategory(PropNotDeclared("a")) != CategoryProp {
		t.Error("PropNotDeclared should be in the prop category")
	}
	if GetCategory(MissingPropValue("a")) != CategoryProp {
		t.Error("MissingPropValue should be in the prop category")
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory(plain) = %v, want %v", got, CategoryInternal)
	}
	if got := GetCategory(InvalidInput("bad")); got != CategoryValidation {
		t.Errorf("GetCategory(InvalidInput) = %v, want %v", got, CategoryValidation)
	}
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"validation", InvalidInput("output directory not empty"), 2},
		{"config", ConfigError("config.yml", stdErrors.New("bad yaml")), 7},
		{"template", CyclicTemplateInheritance([]string{"a", "b", "a"}), 11},
		{"internal", InternalError("oops", nil), 10},
		{"plain", stdErrors.New("plain"), 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(test.err); got != test.code {
				t.Errorf("ExitCodeFor() = %d, want %d", got, test.code)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	got := adapter.FormatError(UndefinedVariable("title").WithCommand("use").InFile("blog/a.md"))
	want := `blog/a.md: UndefinedVariable in {% use %}: variable "title" is not defined`
	if got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}

	got = adapter.FormatError(InvalidInput("output directory must be empty"))
	if got != "output directory must be empty" {
		t.Errorf("FormatError() = %q", got)
	}
}
