package spacetraveling

import "embed"

// EmbeddedAssets contains static assets shipped with the site:
// loadmore.js, logo.svg and styles.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
