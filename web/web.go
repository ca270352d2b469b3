// Package web holds the HTML templates and static assets, embedded into the
// binary so the server has no runtime dependency on its working directory.
package web

import "embed"

// FS contains templates/*.html and static/*.
//
//go:embed templates/*.html static/*
var FS embed.FS
