package main

import _ "embed"

func init() {
	compiledFeatures = append(compiledFeatures, "mappings:embedded")
}

//go:embed default_mappings.lua
var defaultMappingScript string

const defaultMappingName = "default_mappings.lua"
