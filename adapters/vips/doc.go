// Package vips is a libvips-backed codec capability. Its implementation is
// compiled only with the "vips" build tag, which needs libvips headers and
// cgo.
package vips
