package core

// WrapperDecl names one import-wrapper module's specifier and the byte
// length of its source on the init byte stream.
type WrapperDecl struct {
	Name string
	Len  int
}

// ExportDecl is one declared export: the bindings-module property name
// to resolve and its flattened ABI Signature.
type ExportDecl struct {
	Name string
	Sig  Signature
}

// ImportDecl is one declared flat import: a stable name and the arity
// the generated import wrapper is invoked with (spec §3 "Import").
type ImportDecl struct {
	Name   string
	ArgCnt int
}

// Config is the parsed form of the C1 keyed-string environment (spec §4.1).
type Config struct {
	Debug        bool
	SourceName   string
	SourceLen    int
	BindingsLen  int
	Wrappers     []WrapperDecl
	Exports      []ExportDecl
	Imports      []ImportDecl
}
