package symbols

// cKeywords are identifiers that can never be function names: control flow,
// storage classes, builtin types, and the kernel's common function
// attributes.
var cKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "default": {}, "return": {}, "break": {}, "continue": {},
	"goto": {}, "sizeof": {}, "typeof": {},
	"int": {}, "char": {}, "float": {}, "double": {}, "void": {},
	"long": {}, "short": {}, "signed": {}, "unsigned": {},
	"const": {}, "static": {}, "extern": {}, "inline": {},
	"struct": {}, "union": {}, "enum": {}, "typedef": {},
	"auto": {}, "register": {}, "volatile": {},
	"__attribute__": {}, "__always_inline": {}, "noinline": {},
	"bool": {}, "_Bool": {},
}

// IsCKeyword reports whether s is a C keyword or common attribute.
func IsCKeyword(s string) bool {
	_, ok := cKeywords[s]
	return ok
}
