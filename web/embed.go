// Package web holds the dashboard's templates and static assets, compiled into the binary.
package web

import "embed"

// Templates embeds layouts, partials and pages.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds the stylesheet and the dashboard script served under /static/.
//
//go:embed static/**/*
var Static embed.FS
