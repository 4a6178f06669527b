package prompts

import (
	_ "embed"
)

//go:embed system.tmpl
var SystemTemplate string

//go:embed decompose.tmpl
var DecomposeTemplate string

//go:embed reason.tmpl
var ReasonTemplate string
