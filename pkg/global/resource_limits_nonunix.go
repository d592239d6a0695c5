//go:build !darwin && !freebsd && !linux
// +build !darwin,!freebsd,!linux

package global

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func setResourceLimit(name string, softLimit, hardLimit *uint64) error {
	return status.Error(codes.Unimplemented, "Resource limits cannot be adjusted on this operating system")
}
