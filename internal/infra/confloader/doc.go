// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, maps (flags)
//   - Watch Support: callbacks on config file changes (fsnotify)
//   - Type Safety: Unmarshaling into typed structs via koanf tags
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (CALCMESH_*)
//  3. Configuration files
//  4. Default values (pre-populated target struct)
package confloader
