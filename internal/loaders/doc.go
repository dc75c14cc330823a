// Package loaders turns files on disk into domain documents.
//
// Each sub-package handles one family of formats. The Registry picks a
// loader by file extension:
//
//	.txt .text .log .csv  plaintext
//	.md .markdown         markdown
//	.html .htm .xhtml     html
//	.pdf                  pdf
//	.docx                 docx
package loaders
