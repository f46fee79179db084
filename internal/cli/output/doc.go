// Package output formats calcmesh-cli results.
//
//   - text: the bare value, one per line, for shells and pipes
//   - json: indented JSON
//   - yaml: YAML via gopkg.in/yaml.v3
package output
