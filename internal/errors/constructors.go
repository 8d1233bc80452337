package errors

import "fmt"

// Convenience constructors, one per failure kind.

// Tag syntax

func MalformedTag(command, reason string) *SiteError {
	return New(CategorySyntax, KindMalformedTag, reason).WithCommand(command)
}

func LoopSyntax(reason string) *SiteError {
	return New(CategorySyntax, KindLoopSyntaxError, reason).WithCommand("for")
}

// Scope and globals

func UndefinedVariable(name string) *SiteError {
	return New(CategoryScope, KindUndefinedVariable, fmt.Sprintf("variable %q is not defined", name)).
		WithContext("name", name)
}

func DuplicateVariable(name string) *SiteError {
	return New(CategoryScope, KindDuplicateVariable, fmt.Sprintf("variable %q is defined more than once", name)).
		WithCommand("def").
		WithContext("name", name)
}

func UndefinedGlobal(name string) *SiteError {
	return New(CategoryScope, KindUndefinedGlobal, fmt.Sprintf("global %q is not defined in site config", name)).
		WithContext("name", name)
}

func IllegalDefInTemplate() *SiteError {
	return New(CategoryScope, KindIllegalDefInTemplate, "def is not allowed inside a template").
		WithCommand("def")
}

func IllegalUseInTemplate(command string) *SiteError {
	return New(CategoryScope, KindIllegalUseInTemplate, "templates have no scope of their own").
		WithCommand(command)
}

func MissingLoopKey(path string) *SiteError {
	return New(CategoryScope, KindMissingLoopKey, fmt.Sprintf("loop key %q not found", path)).
		WithCommand("for").
		WithContext("key", path)
}

// Templates

func UnknownTemplate(command, name string) *SiteError {
	return New(CategoryTemplate, KindUnknownTemplate, fmt.Sprintf("template %q does not exist", name)).
		WithCommand(command).
		WithContext("template", name)
}

func MultipleTemplateDeclarations(count int) *SiteError {
	return New(CategoryTemplate, KindMultipleTemplateDeclarations,
		fmt.Sprintf("found %d template declarations, at most one is allowed", count)).
		WithCommand("template")
}

func CyclicTemplateInheritance(chain []string) *SiteError {
	return New(CategoryTemplate, KindCyclicTemplateInheritance, "template inheritance cycle detected").
		WithCommand("template").
		WithContext("chain", chain)
}

func CyclicTemplateExpansion(chain []string) *SiteError {
	return New(CategoryTemplate, KindCyclicTemplateExpansion, "template expansion cycle detected").
		WithCommand("expand").
		WithContext("chain", chain)
}

func TemplateDepthExceeded(command string, limit int) *SiteError {
	return New(CategoryTemplate, KindTemplateDepthExceeded, fmt.Sprintf("template nesting exceeds %d levels", limit)).
		WithCommand(command)
}

// Props (PropNotDeclared and MissingPropValue share one category)

func PropNotDeclared(name string) *SiteError {
	return New(CategoryProp, KindPropNotDeclared, fmt.Sprintf("prop %q is not declared on the page's template tag", name)).
		WithCommand("prop").
		WithContext("name", name)
}

func MissingPropValue(name string) *SiteError {
	return New(CategoryProp, KindMissingPropValue, fmt.Sprintf("prop %q is declared but the page never defines it", name)).
		WithCommand("prop").
		WithContext("name", name)
}

// Merging and rendering

func UnresolvedTag(command string) *SiteError {
	return New(CategoryTemplate, KindUnresolvedTag, "tag left unresolved after all passes").
		WithCommand(command)
}

func ContentRenderError(file string, cause error) *SiteError {
	return Wrap(cause, CategoryRender, KindContentRenderError, "content rendering failed").InFile(file)
}

// Input, config and output

func InvalidInput(reason string) *SiteError {
	return New(CategoryValidation, KindInvalidInput, reason)
}

func ConfigError(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, KindConfigError, "site configuration invalid").InFile(path)
}

func OutputConflict(path string) *SiteError {
	return New(CategoryFileSystem, KindOutputConflict, "two inputs produce the same output file").InFile(path)
}

func IOError(operation, path string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, KindIOError, operation+" failed").InFile(path)
}

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, KindInternal, message)
}
