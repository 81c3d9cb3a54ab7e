// Package appfs embeds non-Go assets shipped with the binary:
// SQL migrations and email templates.
package appfs

import "embed"

// The explicit glob on the email directory is needed to pick up the
// underscore-prefixed base layouts, which directory patterns skip.
//
//go:embed migrations assets/templates/email/*
var FS embed.FS
