// Package buildinfo exposes the version of the calcmesh binaries.
//
// Release builds inject values via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/calcmesh-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Development builds fall back to the module and VCS data that the Go
// toolchain embeds.
package buildinfo
