package compiler

// PassName is a strongly-typed identifier for a compiler pass.
type PassName string

// Canonical pass names, in execution order.
const (
	PassDef           PassName = "def"
	PassUse           PassName = "use"
	PassFor           PassName = "for"
	PassGlobal        PassName = "global"
	PassExpand        PassName = "expand"
	PassTemplateSelf  PassName = "template_templates"
	PassTemplatePages PassName = "template_pages"
	PassMerge         PassName = "merge"
)

// passDef pairs a pass name with its executing function.
type passDef struct {
	Name PassName
	Fn   Pass
}

// pipeline returns the fixed pass order. Every pass reads bindings or
// resolved text produced by the ones before it.
func pipeline() []passDef {
	return []passDef{
		{PassDef, passDefine},
		{PassUse, passUse},
		{PassFor, passFor},
		{PassGlobal, passGlobal},
		{PassExpand, passExpand},
		{PassTemplateSelf, passTemplateTemplates},
		{PassTemplatePages, passTemplatePages},
		{PassMerge, passMerge},
	}
}
