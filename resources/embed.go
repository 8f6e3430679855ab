// Package resources embeds the default training corpus, answer map and
// English preprocessing models.
package resources

import "embed"

//go:embed faq-categorizer.txt questionAnswer.properties en-*.yaml
var FS embed.FS
