// Package openapi REST APIのOpenAPI仕様を埋め込む
package openapi

import (
	_ "embed"
)

// Spec OpenAPI仕様（YAML）
//
//go:embed openapi.yaml
var Spec []byte
