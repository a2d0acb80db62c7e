// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shaders embeds the WGSL programs used for stencil-then-cover
// rendering and serves them to a gpu.Renderer.
package shaders

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/gogpu/pathstream/gpu"
)

//go:embed *.wgsl
var sources embed.FS

// EmbeddedLoader is a gpu.ResourceLoader over the embedded programs.
// Program "name" is read from name.wgsl.
type EmbeddedLoader struct{}

// Load returns the WGSL source of the named program.
func (EmbeddedLoader) Load(name string) ([]byte, error) {
	b, err := fs.ReadFile(sources, name+".wgsl")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", gpu.ErrProgramNotFound, name)
	}
	return b, nil
}

// Source returns the WGSL source of the named program, or "" if there is
// none.
func Source(name string) string {
	b, err := EmbeddedLoader{}.Load(name)
	if err != nil {
		return ""
	}
	return string(b)
}

var _ gpu.ResourceLoader = EmbeddedLoader{}
