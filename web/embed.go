// Package web embeds the calculator page templates and its static assets.
package web

import "embed"

// TemplatesFS embeds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and page script.
//
//go:embed static/*
var StaticFS embed.FS
